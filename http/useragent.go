package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/serpwatch"
)

// DefaultUserAgents is the built-in user agent pool.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.7; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36 Edg/131.0.0.0",
}

var (
	_ serpwatch.UserAgentProvider = (*StaticUserAgents)(nil)
	_ serpwatch.UserAgentProvider = (*RemoteUserAgents)(nil)
)

// StaticUserAgents picks uniformly from a fixed pool.
type StaticUserAgents struct {
	agents []string
}

// NewStaticUserAgents returns a provider over agents, or over
// DefaultUserAgents when agents is empty.
func NewStaticUserAgents(agents []string) *StaticUserAgents {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	return &StaticUserAgents{agents: slices.Clone(agents)}
}

// UserAgent returns a random agent from the pool.
func (s *StaticUserAgents) UserAgent() string {
	return s.agents[rand.IntN(len(s.agents))]
}

// RemoteUserAgents serves agents loaded from an external URL and falls back
// to another provider until a load succeeds with a non-empty list.
// The source may be a JSON array of strings or one agent per line.
type RemoteUserAgents struct {
	URL      string
	Client   *http.Client
	Fallback serpwatch.UserAgentProvider

	mu     sync.RWMutex
	agents []string
}

// NewRemoteUserAgents returns a provider for url falling back to the
// built-in static pool.
func NewRemoteUserAgents(url string) *RemoteUserAgents {
	return &RemoteUserAgents{
		URL:      url,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Fallback: NewStaticUserAgents(nil),
	}
}

// Load fetches the agent list. On failure the previously loaded list, or
// the fallback, stays in use.
func (r *RemoteUserAgents) Load(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return 0, serpwatch.Errorf(serpwatch.EINVALID, "invalid user agent source %q: %v", r.URL, err)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, serpwatch.Errorf(serpwatch.ENETWORK, "load user agents: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, serpwatch.Errorf(serpwatch.ENETWORK, "load user agents: HTTP %d", resp.StatusCode)
	}

	agents, err := parseAgents(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return 0, err
	}
	if len(agents) == 0 {
		return 0, serpwatch.Errorf(serpwatch.EINVALID, "user agent source %s is empty", r.URL)
	}

	r.mu.Lock()
	r.agents = agents
	r.mu.Unlock()
	return len(agents), nil
}

// UserAgent returns a random loaded agent, or one from the fallback.
func (r *RemoteUserAgents) UserAgent() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.agents) > 0 {
		return r.agents[rand.IntN(len(r.agents))]
	}
	if r.Fallback != nil {
		return r.Fallback.UserAgent()
	}
	return DefaultUserAgents[0]
}

func parseAgents(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read user agents: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "decode user agents: %v", err)
		}
		return compact(list), nil
	}

	var list []string
	sc := bufio.NewScanner(strings.NewReader(trimmed))
	for sc.Scan() {
		list = append(list, sc.Text())
	}
	return compact(list), sc.Err()
}

func compact(list []string) []string {
	out := list[:0]
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" && !strings.HasPrefix(s, "#") {
			out = append(out, s)
		}
	}
	return out
}
