package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf8"

	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
	"kyon/internal/ingest"
	"kyon/internal/slug"
	"kyon/internal/tree"
)

// BundleFormat identifies the JSON tree layout of a Bundle.
const BundleFormat = "kyon-tree/v1"

// Output is either HTML or *Bundle.
type Output interface {
	isOutput()
}

// HTML is the markup produced for .md documents.
type HTML string

// Bundle is the component-aware form produced for .mdx documents. Tree is a
// JSON array of nodes; component nodes carry the original component name so
// a client can substitute its own widgets.
type Bundle struct {
	Format     string          `json:"format"`
	Tree       json.RawMessage `json:"tree"`
	Components []string        `json:"components"`
	Imports    []string        `json:"imports,omitempty"`
	Exports    []string        `json:"exports,omitempty"`
}

func (HTML) isOutput()    {}
func (*Bundle) isOutput() {}

type Result struct {
	Output      Output
	TOC         []content.TOCItem
	ReadingTime int
	WordCount   int
	Frontmatter content.Frontmatter
}

type Options struct {
	BasePath         string
	SiteURL          string
	HighlightStyle   string
	AutolinkHeadings bool
}

// Compiler is safe for concurrent use; per-document state such as the
// heading slugger is created inside Compile.
type Compiler struct {
	opt Options
	md  *MarkdownRenderer
}

func NewCompiler(opt Options) *Compiler {
	return &Compiler{
		opt: opt,
		md:  NewMarkdownRenderer(opt.HighlightStyle),
	}
}

// Compile strips frontmatter, renders the body and runs the heading and
// asset passes, in that order. Errors wrap ErrMalformedFrontmatter or
// ErrMalformedBody.
func (c *Compiler) Compile(raw []byte, kind content.DocKind, base content.AssetBase) (*Result, error) {
	doc, err := ingest.ParseFrontmatter(raw)
	if err != nil {
		return nil, err
	}
	fm := ingest.DecodeFrontmatter(doc.Data)
	body := doc.Content
	reading := EstimateReading(body, fm.ReadingTime)

	if !utf8.ValidString(body) {
		return nil, fmt.Errorf("%w: invalid UTF-8", domainerr.ErrMalformedBody)
	}

	var mdx mdxSource
	if kind == content.KindMDX {
		mdx, err = preprocessMDX(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainerr.ErrMalformedBody, err)
		}
		body = mdx.Body
	}

	markup, err := c.md.Render([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrMalformedBody, err)
	}
	nodes, err := tree.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrMalformedBody, err)
	}

	toc := AssignHeadingIDs(nodes, slug.NewSlugger())
	if c.opt.AutolinkHeadings {
		AppendHeadingAnchors(nodes)
	}
	AssetRewriter{Base: base, BasePath: c.opt.BasePath, SiteOrigin: c.opt.SiteURL}.Rewrite(nodes)

	res := &Result{
		TOC:         toc,
		ReadingTime: reading.Minutes,
		WordCount:   reading.Words,
		Frontmatter: fm,
	}
	if kind == content.KindMDX {
		res.Output, err = encodeBundle(nodes, mdx)
	} else {
		var s string
		s, err = tree.Render(nodes)
		res.Output = HTML(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerr.ErrMalformedBody, err)
	}
	if res.TOC == nil {
		res.TOC = []content.TOCItem{}
	}
	return res, nil
}

type bundleNode struct {
	Type     string            `json:"type"`
	Tag      string            `json:"tag,omitempty"`
	Name     string            `json:"name,omitempty"`
	Props    map[string]string `json:"props,omitempty"`
	Value    string            `json:"value,omitempty"`
	Children []bundleNode      `json:"children,omitempty"`
}

func encodeBundle(nodes []tree.Node, src mdxSource) (*Bundle, error) {
	used := map[string]struct{}{}
	data, err := json.Marshal(toBundleNodes(nodes, used))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(used))
	for n := range used {
		names = append(names, n)
	}
	sort.Strings(names)
	return &Bundle{
		Format:     BundleFormat,
		Tree:       data,
		Components: names,
		Imports:    src.Imports,
		Exports:    src.Exports,
	}, nil
}

func toBundleNodes(nodes []tree.Node, used map[string]struct{}) []bundleNode {
	out := make([]bundleNode, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *tree.Text:
			out = append(out, bundleNode{Type: "text", Value: v.Value})
		case *tree.Element:
			bn := bundleNode{Type: "element", Tag: v.Tag}
			props := make(map[string]string, len(v.Attrs))
			for _, a := range v.Attrs {
				props[a.Key] = a.Val
			}
			if v.Tag == componentTag {
				bn = bundleNode{Type: "component", Name: props["data-component"]}
				delete(props, "data-component")
				used[bn.Name] = struct{}{}
			}
			if len(props) > 0 {
				bn.Props = props
			}
			bn.Children = toBundleNodes(v.Children, used)
			out = append(out, bn)
		}
	}
	return out
}
