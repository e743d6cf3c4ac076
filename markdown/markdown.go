// Package markdown renders authored posts to HTML as templ components and
// reads their structure (outline, code samples) straight from the source.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/rishiraval/rishiwrites/codeblock"
	"github.com/rishiraval/rishiwrites/theme"
)

// Renderer converts post markdown to HTML. A Renderer is safe for concurrent
// use.
type Renderer struct {
	md         goldmark.Markdown
	resetDelay time.Duration
	style      string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCopyResetDelay sets how long code block copy buttons show "Copied!".
func WithCopyResetDelay(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.resetDelay = d
		}
	}
}

// WithStyle sets the chroma style used for code highlighting.
func WithStyle(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.style = name
		}
	}
}

// New returns a Renderer with GFM, heading ids ({#id} or generated),
// highlighted code blocks wrapped in a copy widget, and theme-aware images.
func New(opts ...Option) *Renderer {
	r := &Renderer{resetDelay: codeblock.DefaultResetDelay, style: "monokai"}
	for _, opt := range opts {
		opt(r)
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(r.style),
				highlighting.WithWrapperRenderer(r.renderCodeWrapper),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
			parser.WithASTTransformers(util.Prioritized(themeImages{}, 100)),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	return r
}

var defaultRenderer = New()

// Markdown returns a templ.Component that renders md as HTML with the
// default Renderer.
func Markdown(content string) templ.Component {
	return defaultRenderer.Component([]byte(content))
}

// Component returns a templ.Component rendering src. The reader's theme is
// taken from the render context.
func (r *Renderer) Component(src []byte) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return r.Render(ctx, w, src)
	})
}

// Render writes the HTML for src to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, src []byte) error {
	pc := parser.NewContext()
	pc.Set(themeKey, theme.FromContext(ctx))
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf, parser.WithContext(pc)); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (r *Renderer) parse(src []byte) ast.Node {
	return r.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))
}

func (r *Renderer) renderCodeWrapper(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
	if !entering {
		if !c.Highlighted() {
			_, _ = w.WriteString("</code></pre>")
		}
		_, _ = w.WriteString("</div>\n")
		return
	}
	lang := ""
	if l, ok := c.Language(); ok {
		lang = string(l)
	}
	filename := ""
	if c.Attributes() != nil {
		if v, ok := c.Attributes().GetString("filename"); ok {
			filename = attrString(v)
		}
	}
	_, _ = w.WriteString(`<div class="code-block" data-language="` + html.EscapeString(lang) + `">`)
	_, _ = w.WriteString(`<div class="code-block-header"><div class="code-block-info">`)
	if lang != "" {
		_, _ = w.WriteString(`<span class="code-block-language">` + html.EscapeString(lang) + `</span>`)
	}
	if filename != "" {
		_, _ = w.WriteString(`<span class="code-block-filename">` + html.EscapeString(filename) + `</span>`)
	}
	_, _ = w.WriteString(`</div><button type="button" class="code-block-copy" aria-label="Copy code"`)
	_, _ = w.WriteString(` data-label="` + codeblock.LabelCopy + `" data-label-copied="` + codeblock.LabelCopied + `"`)
	_, _ = w.WriteString(` data-reset-ms="` + strconv.FormatInt(r.resetDelay.Milliseconds(), 10) + `">`)
	_, _ = w.WriteString(codeblock.LabelCopy + `</button></div>`)
	// chroma writes its own <pre> for highlighted blocks.
	if !c.Highlighted() {
		_, _ = w.WriteString(`<pre class="code-block-pre"><code>`)
	}
}

// attrString converts a parsed goldmark attribute value to a string.
func attrString(v interface{}) string {
	switch s := v.(type) {
	case []byte:
		return string(s)
	case string:
		return s
	}
	return ""
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto":
		return val
	default:
		return ""
	}
}
