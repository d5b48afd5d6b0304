// Package tree is a small typed HTML tree used by the heading and asset
// passes. Nodes are *Element, *Text or *Comment.
package tree

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Node interface {
	node()
}

type Attr struct {
	Key string
	Val string
}

type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

type Text struct {
	Value string
}

type Comment struct {
	Value string
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Comment) node() {}

func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (e *Element) SetAttr(key, val string) {
	for i := range e.Attrs {
		if e.Attrs[i].Key == key {
			e.Attrs[i].Val = val
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Key: key, Val: val})
}

func (e *Element) Append(children ...Node) {
	e.Children = append(e.Children, children...)
}

// HeadingLevel returns 1-6 for h1..h6 and 0 otherwise.
func (e *Element) HeadingLevel() int {
	if len(e.Tag) == 2 && e.Tag[0] == 'h' && e.Tag[1] >= '1' && e.Tag[1] <= '6' {
		return int(e.Tag[1] - '0')
	}
	return 0
}

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the children of that node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		if el, ok := n.(*Element); ok {
			Walk(el.Children, fn)
		}
	}
}

// VisibleText concatenates every descendant text node.
func VisibleText(n Node) string {
	var b strings.Builder
	Walk([]Node{n}, func(c Node) bool {
		if t, ok := c.(*Text); ok {
			b.WriteString(t.Value)
		}
		return true
	})
	return b.String()
}

// Parse reads an HTML fragment as if it were the content of <body>.
func Parse(fragment string) ([]Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(parsed))
	for _, hn := range parsed {
		if n := fromHTML(hn); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

func fromHTML(hn *html.Node) Node {
	switch hn.Type {
	case html.TextNode:
		return &Text{Value: hn.Data}
	case html.CommentNode:
		return &Comment{Value: hn.Data}
	case html.ElementNode:
		el := &Element{Tag: hn.Data}
		for _, a := range hn.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			el.Attrs = append(el.Attrs, Attr{Key: key, Val: a.Val})
		}
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if n := fromHTML(c); n != nil {
				el.Children = append(el.Children, n)
			}
		}
		return el
	}
	return nil
}

// Render serializes nodes back to HTML.
func Render(nodes []Node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, toHTML(n)); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func toHTML(n Node) *html.Node {
	switch v := n.(type) {
	case *Text:
		return &html.Node{Type: html.TextNode, Data: v.Value}
	case *Comment:
		return &html.Node{Type: html.CommentNode, Data: v.Value}
	case *Element:
		hn := &html.Node{
			Type:     html.ElementNode,
			Data:     v.Tag,
			DataAtom: atom.Lookup([]byte(v.Tag)),
		}
		for _, a := range v.Attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
		for _, c := range v.Children {
			hn.AppendChild(toHTML(c))
		}
		return hn
	}
	panic("tree: unknown node type")
}
