// Package goquery provides HTML parsing of search result pages using
// goquery and cascadia selectors.
package goquery

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/serpwatch"
)

// Ensure Parser implements serpwatch.Parser at compile time.
var _ serpwatch.Parser = (*Parser)(nil)

// Parser extracts result items from engine result pages using the
// engine's ranked selector candidates. Compiled selectors are cached, so a
// Parser is meant to be shared.
type Parser struct {
	// Now stamps FetchedAt on parsed results. Defaults to time.Now.
	Now func() time.Time

	mu       sync.RWMutex
	matchers map[string]goquery.Matcher
}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{
		Now:      time.Now,
		matchers: make(map[string]goquery.Matcher),
	}
}

// Validate compiles every selector of engine, reporting the first that
// fails with EINVALID.
func (p *Parser) Validate(engine *serpwatch.EngineConfig) error {
	for _, c := range engine.Selectors {
		for _, sel := range []string{c.Result, c.Title, c.URL, c.Snippet} {
			if sel == "" {
				continue
			}
			if _, err := p.matcher(sel); err != nil {
				return serpwatch.Errorf(serpwatch.EINVALID, "engine %s: candidate %s: %v", engine.Name, c.Name, err)
			}
		}
	}
	return nil
}

// Parse returns the results found on a result page. The first candidate
// whose result selector matches at least one node is used, even if every
// matched item is later skipped for lacking a title.
func (p *Parser) Parse(html string, engine *serpwatch.EngineConfig, keyword string, page int) (*serpwatch.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "failed to parse HTML: %v", err)
	}

	base, err := url.Parse(engine.BaseURL())
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "invalid base URL: %v", err)
	}

	for i, c := range engine.Selectors {
		m, err := p.matcher(c.Result)
		if err != nil {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "engine %s: candidate %s: %v", engine.Name, c.Name, err)
		}
		items := doc.FindMatcher(m)
		if items.Length() == 0 {
			continue
		}

		name := c.Name
		if name == "" {
			name = fmt.Sprintf("candidate-%d", i)
		}
		results, err := p.extract(items, c, base, engine.Name, keyword, page)
		if err != nil {
			return nil, serpwatch.Errorf(serpwatch.EINVALID, "engine %s: candidate %s: %v", engine.Name, name, err)
		}
		return &serpwatch.ParseResult{Candidate: name, Results: results}, nil
	}

	return &serpwatch.ParseResult{}, nil
}

func (p *Parser) extract(items *goquery.Selection, c serpwatch.SelectorSet, base *url.URL, engine, keyword string, page int) ([]*serpwatch.SearchResult, error) {
	titleM, err := p.matcher(c.Title)
	if err != nil {
		return nil, err
	}
	var urlM, snippetM goquery.Matcher
	if c.URL != "" {
		if urlM, err = p.matcher(c.URL); err != nil {
			return nil, err
		}
	}
	if c.Snippet != "" {
		if snippetM, err = p.matcher(c.Snippet); err != nil {
			return nil, err
		}
	}

	now := p.now()
	var results []*serpwatch.SearchResult
	items.Each(func(_ int, item *goquery.Selection) {
		titleSel := item.FindMatcher(titleM).First()
		title := normalizeSpace(titleSel.Text())
		if title == "" {
			return
		}

		var href string
		if urlM != nil {
			href, _ = item.FindMatcher(urlM).First().Attr("href")
		}
		if strings.TrimSpace(href) == "" {
			href = linkHref(titleSel)
		}

		var snippet string
		if snippetM != nil {
			snippet = normalizeSpace(item.FindMatcher(snippetM).First().Text())
		}

		results = append(results, &serpwatch.SearchResult{
			Keyword:   keyword,
			Engine:    engine,
			Page:      page,
			Rank:      len(results),
			Title:     title,
			URL:       resolveURL(base, href),
			Snippet:   snippet,
			FetchedAt: now,
		})
	})
	return results, nil
}

// matcher returns the compiled selector, compiling and caching it on
// first use.
func (p *Parser) matcher(sel string) (goquery.Matcher, error) {
	p.mu.RLock()
	m, ok := p.matchers[sel]
	p.mu.RUnlock()
	if ok {
		return m, nil
	}

	compiled, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", sel, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.matchers == nil {
		p.matchers = make(map[string]goquery.Matcher)
	}
	p.matchers[sel] = compiled
	return compiled, nil
}

func (p *Parser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// linkHref returns the href of sel itself, its first descendant anchor, or
// its closest ancestor anchor.
func linkHref(sel *goquery.Selection) string {
	if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href
	}
	if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
		return href
	}
	href, _ := sel.Closest("a[href]").Attr("href")
	return href
}

// resolveURL makes href absolute against base. Non-HTTP links and
// unparsable hrefs resolve to "".
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
