package serpwatch_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/serpwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEngine() *serpwatch.EngineConfig {
	return &serpwatch.EngineConfig{
		Name:        "test",
		URLTemplate: "https://search.example.com/s?q={keyword}&p={page}",
		PageStep:    serpwatch.PageStep{Stride: 10, Offset: 1},
		Selectors: []serpwatch.SelectorSet{
			{Name: "primary", Result: ".r", Title: "h3 a"},
		},
	}
}

func TestEngineConfig_URL(t *testing.T) {
	t.Parallel()

	t.Run("applies page step to the page index", func(t *testing.T) {
		t.Parallel()

		e := validEngine()

		assert.Equal(t, "https://search.example.com/s?q=golang&p=1", e.URL("golang", 0))
		assert.Equal(t, "https://search.example.com/s?q=golang&p=11", e.URL("golang", 1))
		assert.Equal(t, "https://search.example.com/s?q=golang&p=21", e.URL("golang", 2))
	})

	t.Run("query-escapes the keyword", func(t *testing.T) {
		t.Parallel()

		e := validEngine()

		assert.Equal(t, "https://search.example.com/s?q=go+%26+rust&p=1", e.URL("go & rust", 0))
		assert.Equal(t, "https://search.example.com/s?q=%E4%BA%91&p=1", e.URL("云", 0))
	})

	t.Run("default engines use their provider page parameters", func(t *testing.T) {
		t.Parallel()

		reg, err := serpwatch.NewRegistry(serpwatch.DefaultEngines()...)
		require.NoError(t, err)

		baidu, err := reg.Engine("baidu")
		require.NoError(t, err)
		bing, err := reg.Engine("bing")
		require.NoError(t, err)
		sogou, err := reg.Engine("sogou")
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(baidu.URL("x", 2), "&pn=20"))
		assert.True(t, strings.HasSuffix(bing.URL("x", 2), "&first=21"))
		assert.True(t, strings.HasSuffix(sogou.URL("x", 2), "&page=3"))
	})
}

func TestEngineConfig_BaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://search.example.com", validEngine().BaseURL())

	e := validEngine()
	e.URLTemplate = "/s?q={keyword}&p={page}"
	assert.Empty(t, e.BaseURL())
}

func TestEngineConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(e *serpwatch.EngineConfig)
	}{
		{"missing name", func(e *serpwatch.EngineConfig) { e.Name = "" }},
		{"missing template", func(e *serpwatch.EngineConfig) { e.URLTemplate = "" }},
		{"missing keyword placeholder", func(e *serpwatch.EngineConfig) { e.URLTemplate = "https://x.com/?p={page}" }},
		{"missing page placeholder", func(e *serpwatch.EngineConfig) { e.URLTemplate = "https://x.com/?q={keyword}" }},
		{"relative template", func(e *serpwatch.EngineConfig) { e.URLTemplate = "/s?q={keyword}&p={page}" }},
		{"zero stride", func(e *serpwatch.EngineConfig) { e.PageStep.Stride = 0 }},
		{"no selectors", func(e *serpwatch.EngineConfig) { e.Selectors = nil }},
		{"candidate without title", func(e *serpwatch.EngineConfig) { e.Selectors[0].Title = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := validEngine()
			tt.modify(e)

			err := e.Validate()
			require.Error(t, err)
			assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
		})
	}

	t.Run("accepts valid config", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, validEngine().Validate())
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("unknown engine is not found", func(t *testing.T) {
		t.Parallel()

		reg, err := serpwatch.NewRegistry(serpwatch.DefaultEngines()...)
		require.NoError(t, err)

		_, err = reg.Engine("yahoo")
		require.Error(t, err)
		assert.Equal(t, serpwatch.ENOTFOUND, serpwatch.ErrorCode(err))
	})

	t.Run("lists names sorted", func(t *testing.T) {
		t.Parallel()

		reg, err := serpwatch.NewRegistry(serpwatch.DefaultEngines()...)
		require.NoError(t, err)

		assert.Equal(t, []string{"baidu", "bing", "sogou"}, reg.Names())
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		t.Parallel()

		_, err := serpwatch.NewRegistry(validEngine(), validEngine())
		require.Error(t, err)
		assert.Equal(t, serpwatch.ECONFLICT, serpwatch.ErrorCode(err))
	})

	t.Run("returned configs do not alias registry state", func(t *testing.T) {
		t.Parallel()

		reg, err := serpwatch.NewRegistry(validEngine())
		require.NoError(t, err)

		e, err := reg.Engine("test")
		require.NoError(t, err)
		e.Selectors[0].Result = ".changed"

		again, err := reg.Engine("test")
		require.NoError(t, err)
		assert.Equal(t, ".r", again.Selectors[0].Result)
	})
}

func TestLoadEngines(t *testing.T) {
	t.Parallel()

	t.Run("decodes table keyed by name", func(t *testing.T) {
		t.Parallel()

		doc := `{
			"zeta": {"urlTemplate": "https://z.example.com/?q={keyword}&s={page}", "pageStep": {"stride": 1, "offset": 1},
				"selectors": [{"name": "a", "result": ".r", "title": "a"}]},
			"alpha": {"urlTemplate": "https://a.example.com/?q={keyword}&s={page}", "pageStep": {"stride": 10},
				"selectors": [{"name": "a", "result": ".r", "title": "a"}, {"name": "b", "result": ".x", "title": "h2"}]}
		}`

		configs, err := serpwatch.LoadEngines(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, configs, 2)
		assert.Equal(t, "alpha", configs[0].Name)
		assert.Len(t, configs[0].Selectors, 2)
		assert.Equal(t, "zeta", configs[1].Name)
		assert.Equal(t, "https://z.example.com/?q=k&s=3", configs[1].URL("k", 2))
	})

	t.Run("rejects invalid entries", func(t *testing.T) {
		t.Parallel()

		_, err := serpwatch.LoadEngines(strings.NewReader(`{"bad": {"urlTemplate": "nope"}}`))
		require.Error(t, err)
		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})

	t.Run("decodes disabled flag", func(t *testing.T) {
		t.Parallel()

		doc := `{"off": {"urlTemplate": "https://o.example.com/?q={keyword}&s={page}", "pageStep": {"stride": 1},
			"selectors": [{"name": "a", "result": ".r", "title": "a"}], "disabled": true}}`

		configs, err := serpwatch.LoadEngines(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, configs, 1)
		assert.True(t, configs[0].Disabled)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()

		_, err := serpwatch.LoadEngines(strings.NewReader(`{`))
		require.Error(t, err)
		assert.Equal(t, serpwatch.EINVALID, serpwatch.ErrorCode(err))
	})
}

func TestEnabledEngines(t *testing.T) {
	t.Parallel()

	off := validEngine()
	off.Name = "off"
	off.Disabled = true
	on := validEngine()
	on.Name = "on"
	reg, err := serpwatch.NewRegistry(off, on)
	require.NoError(t, err)

	assert.Equal(t, []string{"on"}, serpwatch.EnabledEngines(reg))
	assert.Equal(t, []string{"off", "on"}, reg.Names())

	got, err := reg.Engine("off")
	require.NoError(t, err)
	assert.True(t, got.Disabled)
}
