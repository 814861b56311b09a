// Package http provides the HTTP implementation of serpwatch.Fetcher with
// browser-like request headers, rotating user agents and an optional
// Chrome TLS fingerprint.
package http

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/serpwatch"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// MaxBodySize caps how much of a response body is read.
const MaxBodySize = 10 << 20

// DefaultAcceptLanguage prefers Chinese, which the built-in engines serve
// their richest result pages for.
const DefaultAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"

// Ensure Fetcher implements serpwatch.Fetcher at compile time.
var _ serpwatch.Fetcher = (*Fetcher)(nil)

// Fetcher performs single GET attempts with a browser header set.
// Transport failures are returned as ENETWORK errors and malformed URLs as
// EINVALID; every HTTP status is returned as a Response.
type Fetcher struct {
	client         *http.Client
	timeout        time.Duration
	agents         serpwatch.UserAgentProvider
	acceptLanguage string
	chromeTLS      bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgents sets the user agent source.
// Defaults to the built-in static pool.
func WithUserAgents(p serpwatch.UserAgentProvider) Option {
	return func(f *Fetcher) {
		f.agents = p
	}
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(v string) Option {
	return func(f *Fetcher) {
		f.acceptLanguage = v
	}
}

// WithChromeTLS dials TLS with a Chrome ClientHello fingerprint.
func WithChromeTLS() Option {
	return func(f *Fetcher) {
		f.chromeTLS = true
	}
}

// WithClient uses client as is. Timeout and TLS options are ignored.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:        DefaultFetchTimeout,
		acceptLanguage: DefaultAcceptLanguage,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.agents == nil {
		f.agents = NewStaticUserAgents(nil)
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
		if f.chromeTLS {
			f.client.Transport = newChromeTransport()
		}
	}

	return f
}

// Fetch performs one GET request against url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*serpwatch.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.EINVALID, "invalid request URL %q: %v", url, err)
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.ENETWORK, "%v", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, serpwatch.Errorf(serpwatch.ENETWORK, "read body of %s: %v", url, err)
	}

	return &serpwatch.Response{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *Fetcher) setHeaders(req *http.Request) {
	h := req.Header
	h.Set("User-Agent", f.agents.UserAgent())
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", f.acceptLanguage)
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Connection", "keep-alive")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Upgrade-Insecure-Requests", "1")
}

// readBody decompresses and transcodes the response body to UTF-8.
func readBody(resp *http.Response) (string, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case "deflate":
		zr, err := zlib.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("deflate: %w", err)
		}
		defer zr.Close()
		r = zr
	case "br":
		r = brotli.NewReader(r)
	}

	raw, err := io.ReadAll(io.LimitReader(r, MaxBodySize))
	if err != nil {
		return "", err
	}

	utf8, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		// Unknown charset label: keep the raw bytes.
		return string(raw), nil
	}
	decoded, err := io.ReadAll(utf8)
	if err != nil {
		return string(raw), nil
	}
	return string(decoded), nil
}
