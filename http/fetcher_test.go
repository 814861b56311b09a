package http_test

import (
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/serpwatch"
	swhttp "github.com/fwojciec/serpwatch/http"
	"github.com/fwojciec/serpwatch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and status from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<html><body>Hello World</body></html>", resp.Body)
	})

	t.Run("sends browser headers and provider user agent", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
		}))
		defer server.Close()

		agents := &mock.UserAgentProvider{UserAgentFn: func() string { return "TestAgent/1.0" }}
		fetcher := swhttp.NewFetcher(swhttp.WithUserAgents(agents))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		got := <-headers
		assert.Equal(t, "TestAgent/1.0", got.Get("User-Agent"))
		assert.Equal(t, swhttp.DefaultAcceptLanguage, got.Get("Accept-Language"))
		assert.Contains(t, got.Get("Accept"), "text/html")
		assert.Equal(t, "gzip, deflate, br", got.Get("Accept-Encoding"))
		assert.Equal(t, "1", got.Get("Upgrade-Insecure-Requests"))
	})

	t.Run("accept language option overrides default", func(t *testing.T) {
		t.Parallel()

		langs := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			langs <- r.Header.Get("Accept-Language")
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher(swhttp.WithAcceptLanguage("en-US"))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "en-US", <-langs)
	})

	t.Run("uses provided client", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher(swhttp.WithClient(server.Client()))
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body)
	})

	t.Run("chrome tls transport still serves plain http", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("plain"))
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher(swhttp.WithChromeTLS())
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "plain", resp.Body)
	})

	t.Run("returns error statuses as responses", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("denied"))
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "denied", resp.Body)
	})

	t.Run("decodes gzip bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			gz := gzip.NewWriter(w)
			_, _ = gz.Write([]byte("<p>zipped</p>"))
			_ = gz.Close()
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<p>zipped</p>", resp.Body)
	})

	t.Run("decodes brotli bodies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Encoding", "br")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			bw := brotli.NewWriter(w)
			_, _ = bw.Write([]byte("<p>brotli</p>"))
			_ = bw.Close()
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<p>brotli</p>", resp.Body)
	})

	t.Run("transcodes GBK pages to UTF-8", func(t *testing.T) {
		t.Parallel()

		encoded, err := simplifiedchinese.GBK.NewEncoder().String("<p>搜狗搜索</p>")
		require.NoError(t, err)

		server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rw.Header().Set("Content-Type", "text/html; charset=gbk")
			_, _ = rw.Write([]byte(encoded))
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher()
		defer fetcher.Close()

		resp, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<p>搜狗搜索</p>", resp.Body)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := swhttp.NewFetcher(swhttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, serpwatch.ENETWORK, serpwatch.ErrorCode(err))
	})

	t.Run("returns network error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := swhttp.NewFetcher(swhttp.WithTimeout(100 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
		assert.Equal(t, serpwatch.ENETWORK, serpwatch.ErrorCode(err))
	})

	t.Run("returns invalid error for malformed URL", func(t *testing.T) {
		t.Parallel()

		fetcher := swhttp.NewFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://bad host/\x7f")
		require.Error(t, err)
		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})
}
