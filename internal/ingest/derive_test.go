package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyon/internal/domain/content"
)

func TestSlugFromDir(t *testing.T) {
	tests := map[string]string{
		"20240315_hello-world": "hello-world",
		"20240315-hello_world": "hello-world",
		"20240315hello":        "hello",
		"Plain Dir":            "plain-dir",
		"20240315":             "20240315",
	}
	for in, want := range tests {
		assert.Equal(t, want, SlugFromDir(in), in)
	}
}

func TestDateFromDir(t *testing.T) {
	d, ok := DateFromDir("20240315_x")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-15", d)

	_, ok = DateFromDir("20241345_x")
	assert.False(t, ok, "month 13 is not a date")

	_, ok = DateFromDir("hello")
	assert.False(t, ok)
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Title Here", FirstHeading("intro\n\n#  Title Here  \n\n## Sub"))
	assert.Equal(t, "", FirstHeading("## Only Sub\n\ntext"))
}

func TestFirstParagraph(t *testing.T) {
	body := "# Heading\n\n```go\nfmt.Println(\"code\")\n```\n\nFirst line\nsecond line.\n\nNext paragraph."
	assert.Equal(t, "First line second line.", FirstParagraph(body))
	assert.Equal(t, "", FirstParagraph("# only heading\n"))
}

func TestTitleFromDir(t *testing.T) {
	assert.Equal(t, "Hello World", TitleFromDir("20240315_hello_world"))
	assert.Equal(t, "Untitled", TitleFromDir("20240315"))
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime("", 0))
	assert.Equal(t, 1, ReadingTime("one two three", 0))
	assert.Equal(t, 3, ReadingTime("", 2.1))
	assert.Equal(t, 1, ReadingTime("", -4))
	assert.Equal(t, MaxReadingTime, ReadingTime("", 1e30))
	assert.Equal(t, MaxReadingTime, ReadingTime("", math.Inf(1)))
	assert.Equal(t, 1, ReadingTime("", math.NaN()))

	words := make([]byte, 0, 221*2)
	for i := 0; i < 221; i++ {
		words = append(words, "w "...)
	}
	assert.Equal(t, 2, ReadingTime(string(words), 0))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 4, CountWords("it's a well-known café"))
	assert.Equal(t, 2, CountWords("日本語 text"))
}

func TestBuildMetaFallbacks(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	src := SourceDir{Category: "notes", DirName: "misc_thoughts", IndexPath: "/c/notes/misc_thoughts/index.md", Kind: content.KindMarkdown}

	m, warns := BuildMeta(src, Parsed{Data: map[string]any{}, Content: "Plain text only."}, now)
	assert.Empty(t, warns)
	assert.Equal(t, "notes/misc_thoughts", m.ID)
	assert.Equal(t, "misc-thoughts", m.Slug)
	assert.Equal(t, "Misc Thoughts", m.Title)
	assert.Equal(t, "Plain text only.", m.Excerpt)
	assert.Equal(t, "2025-01-02", m.Date)
	assert.Equal(t, 1, m.ReadingTime)
	assert.Equal(t, "/c/notes/misc_thoughts", m.AssetBasePath)
	assert.NotNil(t, m.Tags)
}

func TestBuildMetaPrecedence(t *testing.T) {
	src := SourceDir{Category: "blog", DirName: "20240101_x", IndexPath: "/c/blog/20240101_x/index.md"}
	doc := Parsed{
		Data: map[string]any{
			"date":    "2023-12-31",
			"excerpt": "explicit",
			"summary": "ignored",
			"tags":    []any{"Go", "go", " web "},
		},
		Content: "# From Heading\n\npara",
	}
	m, _ := BuildMeta(src, doc, time.Now())
	assert.Equal(t, "2023-12-31", m.Date)
	assert.Equal(t, "From Heading", m.Title)
	assert.Equal(t, "explicit", m.Excerpt)
	assert.Equal(t, []string{"Go", "web"}, m.Tags)
}

func TestBuildMetaHugeReadingTime(t *testing.T) {
	doc, err := ParseFrontmatter([]byte("---\nreadingTime: 1e30\n---\nbody"))
	require.NoError(t, err)
	src := SourceDir{Category: "blog", DirName: "20240101_x", IndexPath: "/c/blog/20240101_x/index.md"}

	m, _ := BuildMeta(src, doc, time.Now())
	assert.Equal(t, MaxReadingTime, m.ReadingTime)
}

func TestBuildMetaBadDateWarns(t *testing.T) {
	src := SourceDir{Category: "blog", DirName: "x", IndexPath: "p"}
	m, warns := BuildMeta(src, Parsed{Data: map[string]any{"date": "soon"}}, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-05-06", m.Date)
	assert.Len(t, warns, 1)
}
