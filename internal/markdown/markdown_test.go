//go:build unit

package markdown

import (
	"bytes"
	"context"
	"errors"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContentConfig() config.ContentConfig {
	return config.ContentConfig{
		LightTheme: "github",
		DarkTheme:  "github-dark",
	}
}

func TestRender_EmptyInput(t *testing.T) {
	r := New(testContentConfig())
	for _, tier := range []Tier{Trusted, Public} {
		for _, in := range []string{"", "   ", "\n\t\n"} {
			out, err := r.Render(context.Background(), in, tier)
			require.NoError(t, err)
			assert.Empty(t, out, "tier %s input %q", tier, in)
		}
	}
}

func TestRender_PublicRemovesScriptVectors(t *testing.T) {
	r := New(testContentConfig())

	tests := []struct {
		name      string
		input     string
		forbidden []string
	}{
		{"script tag", "<script>alert(1)</script>", []string{"<script", "alert(1)"}},
		{"onerror attribute", `<img src="x.png" onerror="alert(1)">`, []string{"onerror"}},
		{"markdown javascript link", "[x](javascript:alert(1))", []string{"javascript:"}},
		{"raw javascript link", `<a href="javascript:alert(1)">x</a>`, []string{"javascript:"}},
		{"event handler on div", `<div onclick="steal()">hi</div>`, []string{"onclick", "steal()"}},
		{"script inside code fence neighbour", "```js\nlet a = 1;\n```\n\n<script src=\"//evil\"></script>", []string{"<script"}},
		{"svg onload", `<svg onload="alert(1)"><circle r="1"/></svg>`, []string{"onload", "<svg"}},
		{"iframe", `<iframe src="https://example.com"></iframe>`, []string{"<iframe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.RenderUntrusted(context.Background(), tt.input)
			require.NoError(t, err)
			for _, f := range tt.forbidden {
				assert.NotContains(t, out, f)
			}
		})
	}
}

func TestRender_PublicKeepsHighlighting(t *testing.T) {
	r := New(testContentConfig())

	out, err := r.RenderUntrusted(context.Background(), "```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```")
	require.NoError(t, err)

	assert.Contains(t, out, `<div class="code-block">`)
	assert.Contains(t, out, `<div class="highlight highlight-light">`)
	assert.Contains(t, out, `<div class="highlight highlight-dark">`)
	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, `class="hl-light-chroma"`)
	assert.Contains(t, out, `class="hl-dark-chroma"`)
	assert.Contains(t, out, `<span class="hl-light-line">`)
	assert.Contains(t, out, `<span class="hl-dark-`)
	assert.Contains(t, out, `<span class="hl-light-kd">func</span>`)
}

func TestRender_PublicRestrictsClassNames(t *testing.T) {
	r := New(testContentConfig())

	out, err := r.RenderUntrusted(context.Background(),
		`<div class="modal-backdrop fixed">a</div> <span class="highlight-dark sr-only">b</span> <span class="hl-dark-kd">c</span>`)
	require.NoError(t, err)
	assert.NotContains(t, out, "modal-backdrop")
	assert.NotContains(t, out, "sr-only")
	assert.Contains(t, out, "<div>a</div>")
	assert.Contains(t, out, `<span class="hl-dark-kd">c</span>`)

	p := PublicAllowlist().Policy()
	assert.Equal(t, `<div class="code-block">x</div>`, p.Sanitize(`<div class="code-block">x</div>`))
	assert.Equal(t, `<span>x</span>`, p.Sanitize(`<span class="hl-light-kd evil">x</span>`))
}

func TestRender_UnknownLanguageStillHighlighted(t *testing.T) {
	r := New(testContentConfig())

	out, err := r.RenderUntrusted(context.Background(), "```\nplain words here\n```")
	require.NoError(t, err)
	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, "<span")
	assert.Contains(t, out, "plain words here")
}

func TestRender_HeadingAndCodeBlockBothTiers(t *testing.T) {
	r := New(testContentConfig())
	input := "# Hello\n\n```ts\nconst x = 1;\n```"

	trusted, err := r.RenderTrusted(context.Background(), input)
	require.NoError(t, err)
	assert.Contains(t, trusted, "<h1")
	assert.Contains(t, trusted, "<pre")

	public, err := r.RenderUntrusted(context.Background(), input)
	require.NoError(t, err)
	assert.Contains(t, public, "<h1")
	assert.Contains(t, public, "<pre")
	assert.Contains(t, public, "<span")
	for _, tag := range []string{"<script", "<iframe", "<style", "<object"} {
		assert.NotContains(t, public, tag)
	}
}

func TestRender_PublicKeepsGFM(t *testing.T) {
	r := New(testContentConfig())
	input := strings.Join([]string{
		"| a | b |",
		"|:--|--:|",
		"| 1 | 2 |",
		"",
		"~~gone~~",
		"",
		"- [x] done",
		"- [ ] todo",
		"",
		"https://example.com",
	}, "\n")

	out, err := r.RenderUntrusted(context.Background(), input)
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td")
	assert.Contains(t, out, "<del>gone</del>")
	assert.Contains(t, out, `type="checkbox"`)
	assert.Contains(t, out, "checked")
	assert.Contains(t, out, `<a href="https://example.com"`)
}

func TestRender_TrustedSkipsSanitizing(t *testing.T) {
	r := New(testContentConfig())

	out, err := r.RenderTrusted(context.Background(), `<video controls src="intro.mp4"></video>`)
	require.NoError(t, err)
	assert.Contains(t, out, `<video controls src="intro.mp4"></video>`)
}

func TestRender_TrustedSanitizedWhenConfigured(t *testing.T) {
	cfg := testContentConfig()
	cfg.SanitizeTrusted = true
	r := New(cfg)

	out, err := r.RenderTrusted(context.Background(), "<details open><summary>More</summary><script>x()</script>body</details>")
	require.NoError(t, err)
	assert.Contains(t, out, "<details")
	assert.Contains(t, out, "<summary>More</summary>")
	assert.NotContains(t, out, "<script")
}

func TestRender_SingleTheme(t *testing.T) {
	cfg := testContentConfig()
	cfg.DarkTheme = ""
	r := New(cfg)

	out, err := r.RenderUntrusted(context.Background(), "```go\nvar x = 1\n```")
	require.NoError(t, err)
	assert.NotContains(t, out, "code-block")
	assert.NotContains(t, out, "hl-dark-")
	assert.Contains(t, out, `class="hl-light-chroma"`)
}

func TestRender_InlineStylesSurviveSanitizing(t *testing.T) {
	cfg := testContentConfig()
	cfg.InlineStyles = true
	r := New(cfg)

	out, err := r.RenderUntrusted(context.Background(), "```go\nfunc main() {}\n```")
	require.NoError(t, err)
	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, `style="`)
	assert.NotContains(t, out, "hl-light-")
}

func TestRender_CancelledContext(t *testing.T) {
	r := New(testContentConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := r.RenderUntrusted(ctx, "hello")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, out)
}

func TestRender_UnknownTier(t *testing.T) {
	r := New(testContentConfig())

	out, err := r.Render(context.Background(), "hello", Tier(42))
	assert.ErrorIs(t, err, ErrRender)
	assert.Empty(t, out)
}

func TestAllowlist_UnionDoesNotModifyParent(t *testing.T) {
	base := BaseAllowlist()
	public := base.Union("public-comment", highlightRules, gfmRules)
	trusted := public.Union("trusted-author", authorRules)

	assert.Empty(t, base.rules)
	assert.Len(t, public.rules, len(highlightRules)+len(gfmRules))
	assert.Len(t, trusted.rules, len(public.rules)+len(authorRules))
	assert.Equal(t, "trusted-author", trusted.Name())

	in := `<span class="hl-light-kd">func</span>`
	assert.Equal(t, "<span>func</span>", base.Policy().Sanitize(in))
	assert.Equal(t, in, public.Policy().Sanitize(in))

	kbd := "<kbd>Ctrl</kbd>"
	assert.Equal(t, "Ctrl", public.Policy().Sanitize(kbd))
	assert.Equal(t, kbd, trusted.Policy().Sanitize(kbd))
}

func TestWriteCSS(t *testing.T) {
	r := New(testContentConfig())

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSS(&buf))
	css := buf.String()
	assert.Contains(t, css, ".hl-light-chroma")
	assert.Contains(t, css, ".hl-dark-chroma")
	assert.Contains(t, css, "prefers-color-scheme: dark")
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		limit int
		want  string
	}{
		{"strips tags", "<h1>Title</h1><p>Some <em>body</em> text.</p>", 0, "Title Some body text."},
		{"skips code", `<p>Intro</p><div class="code-block"><pre><code>x := 1</code></pre></div><p>Outro</p>`, 0, "Intro Outro"},
		{"unescapes entities", "<p>a &amp; b</p>", 0, "a & b"},
		{"truncates on word boundary", "<p>one two three four</p>", 9, "one two…"},
		{"short text untouched", "<p>short</p>", 50, "short"},
		{"empty", "", 10, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.html, tt.limit))
		})
	}
}
