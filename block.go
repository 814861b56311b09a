package serpwatch

import (
	"fmt"
	"slices"
	"strings"
)

// Verdict is the block classification of a response.
type Verdict int

const (
	VerdictOK Verdict = iota
	VerdictBlocked
)

// DefaultBlockStatusCodes are HTTP statuses engines use for throttling or
// bot challenges.
var DefaultBlockStatusCodes = []int{403, 429, 503}

// DefaultBlockPhrases are lower-case fragments of known anti-bot pages.
var DefaultBlockPhrases = []string{
	"captcha",
	"unusual traffic",
	"verify you are a human",
	"confirm you are a human",
	"automated queries",
	"suspicious activity",
	"验证码",
	"安全验证",
	"访问过于频繁",
	"异常流量",
	"请输入验证码",
}

// BlockDetector classifies responses as anti-bot pages. It is pure and
// safe for concurrent use.
type BlockDetector struct {
	StatusCodes []int
	Phrases     []string
}

// NewBlockDetector returns a detector using the default codes and phrases.
func NewBlockDetector() *BlockDetector {
	return &BlockDetector{
		StatusCodes: slices.Clone(DefaultBlockStatusCodes),
		Phrases:     slices.Clone(DefaultBlockPhrases),
	}
}

// Classify reports whether resp is a block page, with a short reason.
func (d *BlockDetector) Classify(resp *Response) (Verdict, string) {
	if resp == nil {
		return VerdictOK, ""
	}
	if slices.Contains(d.StatusCodes, resp.StatusCode) {
		return VerdictBlocked, fmt.Sprintf("status %d", resp.StatusCode)
	}
	body := strings.ToLower(resp.Body)
	for _, p := range d.Phrases {
		if p != "" && strings.Contains(body, strings.ToLower(p)) {
			return VerdictBlocked, fmt.Sprintf("body contains %q", p)
		}
	}
	return VerdictOK, ""
}
