package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerr "kyon/internal/domain/errors"
)

func TestParseFrontmatterYAML(t *testing.T) {
	raw := "---\ntitle: Hello\ntags: [a, b]\ndraft: true\n---\n# Body\n"
	doc, err := ParseFrontmatter([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Data["title"])
	assert.Equal(t, true, doc.Data["draft"])
	assert.Equal(t, "# Body\n", doc.Content)
}

func TestParseFrontmatterTOML(t *testing.T) {
	raw := "+++\ntitle = \"Hello\"\nreadingTime = 3\n+++\nbody"
	doc, err := ParseFrontmatter([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Data["title"])
	assert.Equal(t, "body", doc.Content)
}

func TestParseFrontmatterCRLF(t *testing.T) {
	raw := "---\r\ntitle: Win\r\n---\r\ntext\r\n"
	doc, err := ParseFrontmatter([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Win", doc.Data["title"])
	assert.Equal(t, "text\n", doc.Content)
}

func TestParseFrontmatterNoBlock(t *testing.T) {
	raw := "# Just a body\n\n---\n\nwith a rule"
	doc, err := ParseFrontmatter([]byte(raw))
	require.NoError(t, err)
	assert.Empty(t, doc.Data)
	assert.Equal(t, raw, doc.Content)
}

func TestParseFrontmatterEmptyBlock(t *testing.T) {
	doc, err := ParseFrontmatter([]byte("---\n---\nbody"))
	require.NoError(t, err)
	assert.Empty(t, doc.Data)
	assert.Equal(t, "body", doc.Content)
}

func TestParseFrontmatterMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unterminated", "---\ntitle: x\nbody without close"},
		{"invalid yaml", "---\ntitle: [unclosed\n---\nbody"},
		{"not a mapping", "---\n- a\n- b\n---\nbody"},
		{"invalid toml", "+++\ntitle = \n+++\nbody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrontmatter([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerr.ErrMalformedFrontmatter))
		})
	}
}

func TestDecodeFrontmatter(t *testing.T) {
	fm := DecodeFrontmatter(map[string]any{
		"title":        "  Spaced  ",
		"date":         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"updated":      "2024-04-01T10:00:00Z",
		"summary":      "sum",
		"tags":         []any{"go", 3, "web"},
		"draft":        "yes",
		"canonicalUrl": "https://x.dev/a",
		"readingTime":  2.5,
		"layout":       "wide",
	})
	assert.Equal(t, "Spaced", fm.Title)
	assert.Equal(t, "2024-03-15", fm.Date)
	assert.Equal(t, "2024-04-01", fm.Updated)
	assert.Equal(t, "sum", fm.Summary)
	assert.Equal(t, []string{"go", "web"}, fm.Tags)
	assert.False(t, fm.Draft, "non-bool draft is ignored")
	assert.Equal(t, "https://x.dev/a", fm.CanonicalURL)
	assert.Equal(t, 2.5, fm.ReadingTime)
	assert.Equal(t, "wide", fm.Extra["layout"])
}

func TestDecodeFrontmatterBadDate(t *testing.T) {
	fm := DecodeFrontmatter(map[string]any{"date": "someday"})
	assert.Empty(t, fm.Date)
}
