package crawl_test

import (
	"testing"
	"time"

	"github.com/fwojciec/serpwatch/crawl"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.com", crawl.TruncateURL("https://x.com", 50))
	})

	t.Run("truncates with ellipsis when longer than max", func(t *testing.T) {
		t.Parallel()
		url := "https://example.com/very/long/path/to/documentation"
		result := crawl.TruncateURL(url, 20)
		assert.Equal(t, ".../to/documentation", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns URL unchanged when exactly max length", func(t *testing.T) {
		t.Parallel()
		url := "https://example.com"
		assert.Equal(t, url, crawl.TruncateURL(url, len(url)))
	})

	t.Run("returns empty string when maxLen is zero", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateURL("https://example.com", 0))
	})

	t.Run("returns empty string when maxLen is negative", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateURL("https://example.com", -1))
	})

	t.Run("returns prefix of URL when maxLen is very small", func(t *testing.T) {
		t.Parallel()
		// When maxLen < 4, we can't fit "..." prefix, so return URL prefix
		assert.Equal(t, "htt", crawl.TruncateURL("https://example.com", 3))
		assert.Equal(t, "ht", crawl.TruncateURL("https://example.com", 2))
		assert.Equal(t, "h", crawl.TruncateURL("https://example.com", 1))
	})

	t.Run("handles short URL with small maxLen", func(t *testing.T) {
		t.Parallel()
		// URL shorter than maxLen should return unchanged
		assert.Equal(t, "ab", crawl.TruncateURL("ab", 3))
		assert.Equal(t, "a", crawl.TruncateURL("a", 2))
	})
}

func TestTruncateText(t *testing.T) {
	t.Parallel()

	t.Run("counts runes not bytes", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "人工智能", crawl.TruncateText("人工智能", 4))
		assert.Equal(t, "人工...", crawl.TruncateText("人工智能技术", 5))
	})

	t.Run("returns empty string when maxLen is zero", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, crawl.TruncateText("abc", 0))
	})

	t.Run("returns prefix when maxLen is very small", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "ab", crawl.TruncateText("abcdef", 2))
	})
}

func TestFormatRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0%", crawl.FormatRate(0))
	assert.Equal(t, "67%", crawl.FormatRate(2.0/3.0))
	assert.Equal(t, "100%", crawl.FormatRate(1))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.5s", crawl.FormatDuration(1520*time.Millisecond))
	assert.Equal(t, "250ms", crawl.FormatDuration(250400*time.Microsecond))
	assert.Equal(t, "2m5s", crawl.FormatDuration(125*time.Second+300*time.Millisecond))
}
