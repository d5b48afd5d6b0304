package render

import (
	"bytes"
	"io"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownRenderer turns a Markdown body into an HTML fragment. Heading ids
// are not generated here; explicit {#id} attributes pass through.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer(highlightStyle string) *MarkdownRenderer {
	if highlightStyle == "" {
		highlightStyle = "github"
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
					chromahtml.TabWidth(2),
				),
			),
		),
		goldmark.WithParserOptions(parser.WithAttribute()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &MarkdownRenderer{md: md}
}

func (r *MarkdownRenderer) Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHighlightCSS writes the stylesheet matching the class names emitted
// for fenced code blocks.
func WriteHighlightCSS(w io.Writer, style string) error {
	st := styles.Get(style)
	return chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(w, st)
}
