package markdown

import (
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

const (
	lightClassPrefix = "hl-light-"
	darkClassPrefix  = "hl-dark-"
)

// themeVariant is one rendering of a code block in a single chroma style.
type themeVariant struct {
	class  string // wrapper class, e.g. "highlight-light"
	prefix string // chroma class prefix
	style  string
	render renderer.NodeRendererFunc
	inner  renderer.NodeRenderer
}

// codeRenderer renders every fenced code block once per theme. The renderings
// sit side by side inside one wrapper and CSS decides which one is visible.
type codeRenderer struct {
	variants     []*themeVariant
	inlineStyles bool
}

func newCodeRenderer(cfg config.ContentConfig) *codeRenderer {
	c := &codeRenderer{inlineStyles: cfg.InlineStyles}
	c.add("highlight-light", lightClassPrefix, cfg.LightTheme)
	if cfg.DarkTheme != "" {
		c.add("highlight-dark", darkClassPrefix, cfg.DarkTheme)
	}
	return c
}

func (c *codeRenderer) formatOptions(prefix string) []chromahtml.Option {
	if c.inlineStyles {
		return nil
	}
	return []chromahtml.Option{chromahtml.WithClasses(true), chromahtml.ClassPrefix(prefix)}
}

func (c *codeRenderer) add(class, prefix, style string) {
	if style == "" {
		style = "github"
	}
	inner := highlighting.NewHTMLRenderer(
		highlighting.WithStyle(style),
		highlighting.WithGuessLanguage(true),
		highlighting.WithFormatOptions(c.formatOptions(prefix)...),
	)
	v := &themeVariant{class: class, prefix: prefix, style: style, inner: inner}
	inner.RegisterFuncs(funcCapture{kind: ast.KindFencedCodeBlock, dst: &v.render})
	c.variants = append(c.variants, v)
}

// funcCapture picks a single render function out of a NodeRenderer.
type funcCapture struct {
	kind ast.NodeKind
	dst  *renderer.NodeRendererFunc
}

func (f funcCapture) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	if kind == f.kind {
		*f.dst = fn
	}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (c *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, c.renderFencedCodeBlock)
}

// SetOption forwards renderer options such as html.WithUnsafe to the wrapped
// highlighting renderers.
func (c *codeRenderer) SetOption(name renderer.OptionName, value interface{}) {
	for _, v := range c.variants {
		if so, ok := v.inner.(renderer.SetOptioner); ok {
			so.SetOption(name, value)
		}
	}
}

func (c *codeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	if len(c.variants) == 1 {
		return c.variants[0].render(w, source, node, entering)
	}

	_, _ = w.WriteString(`<div class="code-block">`)
	for _, v := range c.variants {
		_, _ = fmt.Fprintf(w, `<div class="highlight %s">`, v.class)
		if _, err := v.render(w, source, node, entering); err != nil {
			return ast.WalkStop, err
		}
		_, _ = w.WriteString("</div>")
	}
	_, _ = w.WriteString("</div>\n")
	return ast.WalkContinue, nil
}

const themeToggleCSS = `
.code-block .highlight-dark { display: none; }
@media (prefers-color-scheme: dark) {
  .code-block .highlight-light { display: none; }
  .code-block .highlight-dark { display: block; }
}
.light .code-block .highlight-light { display: block; }
.light .code-block .highlight-dark { display: none; }
.dark .code-block .highlight-light { display: none; }
.dark .code-block .highlight-dark { display: block; }
`

// WriteCSS writes the chroma class rules for every theme followed by the
// rules that toggle between them. With inline styles only the toggle is needed.
func (c *codeRenderer) WriteCSS(w io.Writer) error {
	if !c.inlineStyles {
		for _, v := range c.variants {
			formatter := chromahtml.New(c.formatOptions(v.prefix)...)
			if err := formatter.WriteCSS(w, styles.Get(v.style)); err != nil {
				return fmt.Errorf("failed to write %s css: %w", v.style, err)
			}
		}
	}
	if len(c.variants) > 1 {
		_, err := io.WriteString(w, themeToggleCSS)
		return err
	}
	return nil
}
