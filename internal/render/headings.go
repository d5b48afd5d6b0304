package render

import (
	"strings"

	"kyon/internal/domain/content"
	"kyon/internal/slug"
	"kyon/internal/tree"
)

// AssignHeadingIDs gives every h1-h6 an id and returns the h2/h3 entries in
// document order. Existing non-empty ids are kept and reserved in s so
// generated ids cannot collide with them.
func AssignHeadingIDs(nodes []tree.Node, s *slug.Slugger) []content.TOCItem {
	tree.Walk(nodes, func(n tree.Node) bool {
		if el, ok := n.(*tree.Element); ok && el.HeadingLevel() > 0 {
			if id, _ := el.Attr("id"); strings.TrimSpace(id) != "" {
				s.Reserve(id)
			}
			return false
		}
		return true
	})

	var toc []content.TOCItem
	tree.Walk(nodes, func(n tree.Node) bool {
		el, ok := n.(*tree.Element)
		if !ok {
			return true
		}
		depth := el.HeadingLevel()
		if depth == 0 {
			return true
		}
		text := tree.VisibleText(el)
		id, _ := el.Attr("id")
		if strings.TrimSpace(id) == "" {
			id = s.Slug(text)
			el.SetAttr("id", id)
		}
		if depth == 2 || depth == 3 {
			toc = append(toc, content.TOCItem{ID: id, Depth: depth, Text: strings.TrimSpace(text)})
		}
		return false
	})
	return toc
}

// AppendHeadingAnchors adds a self link to the end of every heading that
// has an id.
func AppendHeadingAnchors(nodes []tree.Node) {
	tree.Walk(nodes, func(n tree.Node) bool {
		el, ok := n.(*tree.Element)
		if !ok || el.HeadingLevel() == 0 {
			return true
		}
		if id, _ := el.Attr("id"); id != "" {
			el.Append(&tree.Element{
				Tag: "a",
				Attrs: []tree.Attr{
					{Key: "aria-hidden", Val: "true"},
					{Key: "tabindex", Val: "-1"},
					{Key: "href", Val: "#" + id},
				},
				Children: []tree.Node{
					&tree.Element{Tag: "span", Attrs: []tree.Attr{{Key: "class", Val: "icon icon-link"}}},
				},
			})
		}
		return false
	})
}
