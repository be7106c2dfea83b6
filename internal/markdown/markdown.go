// Package markdown turns authored Markdown into highlighted HTML and applies
// the sanitizer allowlist that matches the author's trust tier.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/config"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Tier classifies content by the privilege of its author.
type Tier int

const (
	// Trusted content is written by administrators and is emitted as rendered.
	Trusted Tier = iota
	// Public content is written by any signed-in user and is always sanitized.
	Public
)

func (t Tier) String() string {
	switch t {
	case Trusted:
		return "trusted"
	case Public:
		return "public"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ErrRender marks an unexpected failure inside the pipeline. Callers must not
// persist anything when they receive it.
var ErrRender = errors.New("render failure")

// Renderer converts Markdown to HTML. It is safe for concurrent use.
type Renderer struct {
	md              goldmark.Markdown
	code            *codeRenderer
	public          *bluemonday.Policy
	trusted         *bluemonday.Policy
	sanitizeTrusted bool
}

// New builds a Renderer and its allowlists from the content configuration.
func New(cfg config.ContentConfig) *Renderer {
	code := newCodeRenderer(cfg)
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			// Raw HTML is kept here; the Public allowlist removes what is unsafe.
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(code, 200)),
		),
	)

	r := &Renderer{
		md:              md,
		code:            code,
		public:          PublicAllowlist().Policy(),
		sanitizeTrusted: cfg.SanitizeTrusted,
	}
	if cfg.SanitizeTrusted {
		r.trusted = TrustedAllowlist().Policy()
	}
	return r
}

// RenderTrusted renders post and project bodies.
func (r *Renderer) RenderTrusted(ctx context.Context, raw string) (string, error) {
	return r.Render(ctx, raw, Trusted)
}

// RenderUntrusted renders comments and replies.
func (r *Renderer) RenderUntrusted(ctx context.Context, raw string) (string, error) {
	return r.Render(ctx, raw, Public)
}

// Render parses raw, renders it to HTML with highlighted code blocks and, for
// Public content, sanitizes the complete fragment. Sanitizing always runs last
// so the markup added by the highlighter is checked too.
func (r *Renderer) Render(ctx context.Context, raw string, tier Tier) (out string, err error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = ""
			err = fmt.Errorf("%w: %s content: %v", ErrRender, tier, rec)
		}
	}()

	source := []byte(raw)
	doc := r.md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", fmt.Errorf("%w: %s content: %v", ErrRender, tier, err)
	}

	policy, err := r.policy(tier)
	if err != nil {
		return "", err
	}
	if policy == nil {
		return buf.String(), nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return policy.SanitizeReader(&buf).String(), nil
}

func (r *Renderer) policy(tier Tier) (*bluemonday.Policy, error) {
	switch tier {
	case Public:
		return r.public, nil
	case Trusted:
		if r.sanitizeTrusted {
			return r.trusted, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown content tier %d", ErrRender, int(tier))
	}
}

// WriteCSS writes the stylesheet for the configured highlight themes.
func (r *Renderer) WriteCSS(w io.Writer) error {
	return r.code.WriteCSS(w)
}
