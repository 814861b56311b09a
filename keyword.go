package serpwatch

import (
	"context"
	"strings"
	"time"
)

// Keyword is a search term tracked across crawls.
type Keyword struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the keyword contains invalid fields.
func (k *Keyword) Validate() error {
	if strings.TrimSpace(k.Text) == "" {
		return Errorf(EINVALID, "keyword text required")
	}
	return nil
}

// KeywordService represents a service for managing tracked keywords.
type KeywordService interface {
	// AddKeyword stores a keyword as active. Adding an existing keyword
	// reactivates it.
	AddKeyword(ctx context.Context, text string) (*Keyword, error)

	// ActiveKeywords returns active keyword texts in insertion order.
	ActiveKeywords(ctx context.Context) ([]string, error)

	// SetKeywordActive toggles whether a keyword is crawled.
	// Returns ENOTFOUND if the keyword does not exist.
	SetKeywordActive(ctx context.Context, text string, active bool) error
}

// DefaultKeywords is the seed keyword list used when none are configured.
func DefaultKeywords() []string {
	return []string{
		"人工智能",
		"机器学习",
		"深度学习",
		"Python编程",
		"数据分析",
		"云计算",
		"区块链",
		"物联网",
	}
}
