package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/rishiraval/rishiwrites/theme"
	"github.com/rishiraval/rishiwrites/toc"
)

var themeKey = parser.NewContextKey()

// themeImages substitutes {theme} and {THEME} in image destinations with the
// reader's preference, so one source can reference a light and a dark
// illustration.
type themeImages struct{}

func (themeImages) Transform(doc *ast.Document, _ text.Reader, pc parser.Context) {
	pref, _ := pc.Get(themeKey).(theme.Preference)
	if pref == "" {
		pref = theme.Light
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			img.Destination = ThemeURL(img.Destination, pref)
		}
		return ast.WalkContinue, nil
	})
}

// ThemeURL replaces the {theme} and {THEME} placeholders in dest.
func ThemeURL(dest []byte, pref theme.Preference) []byte {
	if !bytes.Contains(dest, []byte("{")) {
		return dest
	}
	out := bytes.ReplaceAll(dest, []byte("{theme}"), []byte(pref))
	return bytes.ReplaceAll(out, []byte("{THEME}"), []byte(strings.ToUpper(string(pref))))
}

// Document is a post source split into frontmatter and markdown body.
type Document struct {
	Outline toc.Outline `yaml:"outline"`
	Body    []byte      `yaml:"-"`
}

// Parse splits src into frontmatter and body. Frontmatter is optional; when
// it declares no outline, the outline is read from the body's h2 and h3
// headings. The outline is validated either way.
func (r *Renderer) Parse(src []byte) (*Document, error) {
	var doc Document
	body, err := frontmatter.Parse(bytes.NewReader(src), &doc)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	doc.Body = body
	if len(doc.Outline) == 0 {
		doc.Outline = r.Outline(body)
	}
	if err := doc.Outline.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Outline returns the h2 and h3 headings of src in document order. Heading
// ids are the explicit {#id} attribute or the generated one, exactly as
// Render emits them.
func (r *Renderer) Outline(src []byte) toc.Outline {
	var out toc.Outline
	_ = ast.Walk(r.parse(src), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level != int(toc.Section) && h.Level != int(toc.Subsection) {
			return ast.WalkSkipChildren, nil
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			id = attrString(v)
		}
		out = append(out, toc.Entry{
			ID:    id,
			Text:  strings.TrimSpace(nodeText(h, src)),
			Level: toc.Level(h.Level),
		})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// nodeText concatenates the text of n's inline descendants.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// CodeBlock is a fenced code sample of a post.
type CodeBlock struct {
	Language string
	Filename string
	Code     string
}

// CodeBlocks returns the fenced code blocks of src in document order.
func (r *Renderer) CodeBlocks(src []byte) []CodeBlock {
	var out []CodeBlock
	_ = ast.Walk(r.parse(src), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		var code bytes.Buffer
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(src))
		}
		cb := CodeBlock{
			Language: string(fc.Language(src)),
			Code:     code.String(),
		}
		if fc.Info != nil {
			cb.Filename = infoAttr(fc.Info.Segment.Value(src), "filename")
		}
		out = append(out, cb)
		return ast.WalkSkipChildren, nil
	})
	return out
}

// infoAttr reads an attribute from a fence info string such as
// `cpp {filename="validation.cpp"}`.
func infoAttr(info []byte, name string) string {
	i := bytes.IndexByte(info, '{')
	if i < 0 {
		return ""
	}
	attrs, ok := parser.ParseAttributes(text.NewReader(info[i:]))
	if !ok {
		return ""
	}
	for _, a := range attrs {
		if string(a.Name) == name {
			return attrString(a.Value)
		}
	}
	return ""
}
