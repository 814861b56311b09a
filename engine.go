package serpwatch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Placeholders substituted by EngineConfig.URL.
const (
	KeywordPlaceholder = "{keyword}"
	PagePlaceholder    = "{page}"
)

// PageStep maps a 0-based page index to the page parameter an engine
// expects: index*Stride + Offset.
type PageStep struct {
	Stride int `json:"stride"`
	Offset int `json:"offset"`
}

// Param returns the provider page parameter for the page index.
func (p PageStep) Param(index int) int {
	return index*p.Stride + p.Offset
}

// SelectorSet is one candidate way of locating result items on an engine's
// result page. URL and Snippet are optional; URL falls back to the title
// link when empty.
type SelectorSet struct {
	Name    string `json:"name"`
	Result  string `json:"result"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// EngineConfig describes how to query and parse one search engine.
// Selectors are ordered by preference. Configs are read-only once registered.
// A disabled engine stays registered but is left out when callers ask for
// all engines.
type EngineConfig struct {
	Name        string        `json:"name"`
	DisplayName string        `json:"displayName,omitempty"`
	URLTemplate string        `json:"urlTemplate"`
	PageStep    PageStep      `json:"pageStep"`
	Selectors   []SelectorSet `json:"selectors"`
	Disabled    bool          `json:"disabled,omitempty"`
}

// Validate returns an error if the engine config contains invalid fields.
func (c *EngineConfig) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "engine name required")
	}
	if c.URLTemplate == "" {
		return Errorf(EINVALID, "engine %s: url template required", c.Name)
	}
	if !strings.Contains(c.URLTemplate, KeywordPlaceholder) {
		return Errorf(EINVALID, "engine %s: url template missing %s", c.Name, KeywordPlaceholder)
	}
	if !strings.Contains(c.URLTemplate, PagePlaceholder) {
		return Errorf(EINVALID, "engine %s: url template missing %s", c.Name, PagePlaceholder)
	}
	if c.BaseURL() == "" {
		return Errorf(EINVALID, "engine %s: url template must be an absolute URL", c.Name)
	}
	if c.PageStep.Stride <= 0 {
		return Errorf(EINVALID, "engine %s: page stride must be positive", c.Name)
	}
	if len(c.Selectors) == 0 {
		return Errorf(EINVALID, "engine %s: at least one selector candidate required", c.Name)
	}
	for i, s := range c.Selectors {
		if s.Result == "" || s.Title == "" {
			return Errorf(EINVALID, "engine %s: selector candidate %d requires result and title selectors", c.Name, i)
		}
	}
	return nil
}

// URL returns the result page URL for keyword at the 0-based page index.
func (c *EngineConfig) URL(keyword string, page int) string {
	r := strings.NewReplacer(
		KeywordPlaceholder, url.QueryEscape(keyword),
		PagePlaceholder, strconv.Itoa(c.PageStep.Param(page)),
	)
	return r.Replace(c.URLTemplate)
}

// BaseURL returns scheme and host of the engine, used to resolve relative
// result links. Returns "" when the template is not an absolute URL.
func (c *EngineConfig) BaseURL() string {
	raw := strings.NewReplacer(KeywordPlaceholder, "", PagePlaceholder, "").Replace(c.URLTemplate)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Label returns the display name, falling back to the engine name.
func (c *EngineConfig) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

func (c *EngineConfig) clone() *EngineConfig {
	cp := *c
	cp.Selectors = slices.Clone(c.Selectors)
	return &cp
}

// EngineRegistry resolves engine names to their configuration.
type EngineRegistry interface {
	// Engine returns the config for name.
	// Returns ENOTFOUND if the engine is not registered.
	Engine(name string) (*EngineConfig, error)

	// Names returns registered engine names in sorted order.
	Names() []string
}

var _ EngineRegistry = (*Registry)(nil)

// Registry is an immutable, in-memory EngineRegistry.
type Registry struct {
	engines map[string]*EngineConfig
	names   []string
}

// NewRegistry validates configs and returns a registry holding copies of them.
func NewRegistry(configs ...*EngineConfig) (*Registry, error) {
	r := &Registry{engines: make(map[string]*EngineConfig, len(configs))}
	for _, c := range configs {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.engines[c.Name]; ok {
			return nil, Errorf(ECONFLICT, "engine %s registered twice", c.Name)
		}
		r.engines[c.Name] = c.clone()
		r.names = append(r.names, c.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Engine returns a copy of the config registered under name.
func (r *Registry) Engine(name string) (*EngineConfig, error) {
	c, ok := r.engines[name]
	if !ok {
		return nil, Errorf(ENOTFOUND, "unknown engine %q", name)
	}
	return c.clone(), nil
}

// Names returns registered engine names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// EnabledEngines returns the names of enabled engines in sorted order.
func EnabledEngines(r EngineRegistry) []string {
	var names []string
	for _, name := range r.Names() {
		if c, err := r.Engine(name); err == nil && !c.Disabled {
			names = append(names, name)
		}
	}
	return names
}

// DefaultEngines returns the built-in engine table.
func DefaultEngines() []*EngineConfig {
	return []*EngineConfig{
		{
			Name:        "baidu",
			DisplayName: "百度",
			URLTemplate: "https://www.baidu.com/s?wd={keyword}&pn={page}",
			PageStep:    PageStep{Stride: 10, Offset: 0},
			Selectors: []SelectorSet{
				{Name: "result", Result: ".result", Title: "h3 a", URL: "h3 a", Snippet: ".c-abstract"},
				{Name: "container", Result: ".c-container", Title: ".t a", URL: ".t a", Snippet: ".c-span9"},
				{Name: "legacy", Result: "#content_left > div[id]", Title: "h3", Snippet: ".c-span-last"},
			},
		},
		{
			Name:        "bing",
			DisplayName: "必应",
			URLTemplate: "https://cn.bing.com/search?q={keyword}&first={page}",
			PageStep:    PageStep{Stride: 10, Offset: 1},
			Selectors: []SelectorSet{
				{Name: "algo", Result: ".b_algo", Title: "h2 a", URL: "h2 a", Snippet: ".b_caption p"},
				{Name: "list", Result: "#b_results > li", Title: "h2", Snippet: "p"},
			},
		},
		{
			Name:        "sogou",
			DisplayName: "搜狗",
			URLTemplate: "https://www.sogou.com/web?query={keyword}&page={page}",
			PageStep:    PageStep{Stride: 1, Offset: 1},
			Selectors: []SelectorSet{
				{Name: "rb", Result: ".results .rb", Title: "h3 a", URL: "h3 a", Snippet: ".ft"},
				{Name: "result", Result: ".result", Title: ".pt a", URL: ".pt a", Snippet: ".str_info"},
				{Name: "vrwrap", Result: ".vrwrap", Title: "h3 a", URL: "h3 a", Snippet: ".str-text-info"},
			},
		},
	}
}

// LoadEngines decodes an engine table from JSON. The document is an object
// keyed by engine name; a name field inside an entry is overridden by its key.
func LoadEngines(r io.Reader) ([]*EngineConfig, error) {
	var table map[string]*EngineConfig
	if err := json.NewDecoder(r).Decode(&table); err != nil {
		return nil, Errorf(EINVALID, "decode engine table: %s", err)
	}
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	configs := make([]*EngineConfig, 0, len(names))
	for _, name := range names {
		c := table[name]
		if c == nil {
			return nil, Errorf(EINVALID, "engine %s: empty definition", name)
		}
		c.Name = name
		if err := c.Validate(); err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, nil
}

// String implements fmt.Stringer.
func (p PageStep) String() string {
	return fmt.Sprintf("%d*i+%d", p.Stride, p.Offset)
}
