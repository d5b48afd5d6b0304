package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRenderRoundTrip(t *testing.T) {
	src := `<h2 id="a">Hello <em>there</em></h2><p>text &amp; more</p><!-- note --><img src="x.png" alt="x"/>`
	nodes, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, nodes, 4)

	h, ok := nodes[0].(*Element)
	require.True(t, ok)
	assert.Equal(t, 2, h.HeadingLevel())
	id, _ := h.Attr("id")
	assert.Equal(t, "a", id)
	assert.Equal(t, "Hello there", VisibleText(h))

	_, isComment := nodes[2].(*Comment)
	assert.True(t, isComment)

	out, err := Render(nodes)
	require.NoError(t, err)
	assert.Equal(t, `<h2 id="a">Hello <em>there</em></h2><p>text &amp; more</p><!-- note --><img src="x.png" alt="x"/>`, out)
}

func TestWalkSkipsChildren(t *testing.T) {
	nodes, err := Parse(`<div><p>inner</p></div><p>outer</p>`)
	require.NoError(t, err)

	var tags []string
	Walk(nodes, func(n Node) bool {
		if el, ok := n.(*Element); ok {
			tags = append(tags, el.Tag)
			return el.Tag != "div"
		}
		return true
	})
	assert.Equal(t, []string{"div", "p"}, tags)
}

func TestSetAttr(t *testing.T) {
	el := &Element{Tag: "a"}
	el.SetAttr("href", "/x")
	el.SetAttr("href", "/y")
	el.SetAttr("rel", "nofollow")
	assert.Equal(t, []Attr{{"href", "/y"}, {"rel", "nofollow"}}, el.Attrs)
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 0, (&Element{Tag: "hr"}).HeadingLevel())
	assert.Equal(t, 0, (&Element{Tag: "h7"}).HeadingLevel())
	assert.Equal(t, 6, (&Element{Tag: "h6"}).HeadingLevel())
}

func TestRenderBuiltTree(t *testing.T) {
	el := &Element{Tag: "p"}
	el.Append(&Text{Value: "a < b"})
	out, err := Render([]Node{el})
	require.NoError(t, err)
	assert.Equal(t, "<p>a &lt; b</p>", out)
}
