package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyon/internal/domain/content"
)

func searchFixture() View {
	a := post("blog", "a", "a", "System design notes", "2024-01-01", "architecture")
	a.Excerpt = "Notes on building things."
	b := post("blog", "b", "b", "Cooking pasta", "2024-03-01", "food")
	b.Excerpt = "Water, salt and patience."
	c := post("notes", "c", "c", "Weekly log", "2024-02-01", "Design")
	c.Excerpt = "Short entries."
	return NewSnapshot([]content.PostMeta{a, b, c}, nil, time.Time{}).View(false)
}

func TestSearchScoresTitleFirst(t *testing.T) {
	hits := searchFixture().SearchHits(Criteria{Query: "design"})
	require.NotEmpty(t, hits)
	assert.Equal(t, "blog/a", hits[0].Post.ID)
	// title term +5, full query in title +6
	assert.Equal(t, 11, hits[0].Score)

	require.Len(t, hits, 2)
	assert.Equal(t, "notes/c", hits[1].Post.ID)
	assert.Equal(t, 4, hits[1].Score)
}

func TestSearchEmptyQueryReturnsFilteredSet(t *testing.T) {
	v := searchFixture()
	assert.Equal(t, []string{"blog/b", "notes/c", "blog/a"}, ids(v.Search(Criteria{})))
	assert.Equal(t, []string{"blog/b", "blog/a"}, ids(v.Search(Criteria{Query: "   ", Category: "blog"})))

	for _, h := range v.SearchHits(Criteria{}) {
		assert.Zero(t, h.Score)
	}
}

func TestSearchDropsZeroScores(t *testing.T) {
	assert.Empty(t, searchFixture().Search(Criteria{Query: "kubernetes"}))
}

func TestSearchFilters(t *testing.T) {
	v := searchFixture()
	tests := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"category", Criteria{Category: "notes"}, []string{"notes/c"}},
		{"from inclusive", Criteria{From: "2024-02-01"}, []string{"blog/b", "notes/c"}},
		{"to inclusive", Criteria{To: "2024-02-01"}, []string{"notes/c", "blog/a"}},
		{"range", Criteria{From: "2024-01-15", To: "2024-02-15"}, []string{"notes/c"}},
		{"tag case-insensitive", Criteria{Tags: []string{"DESIGN"}}, []string{"notes/c"}},
		{"any tag", Criteria{Tags: []string{"food", "architecture"}}, []string{"blog/b", "blog/a"}},
		{"blank tags ignored", Criteria{Tags: []string{" "}}, []string{"blog/b", "notes/c", "blog/a"}},
		{"filters before scoring", Criteria{Query: "design", Category: "notes"}, []string{"notes/c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(v.Search(tt.c)))
		})
	}
}

func TestSearchTiesUseFreshness(t *testing.T) {
	older := post("c", "old", "old", "Go tips", "2023-01-01")
	newer := post("c", "new", "new", "Go tricks", "2024-01-01")
	v := NewSnapshot([]content.PostMeta{older, newer}, nil, time.Time{}).View(false)

	hits := v.SearchHits(Criteria{Query: "go"})
	require.Len(t, hits, 2)
	assert.Equal(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, "c/new", hits[0].Post.ID)
}

func TestScore(t *testing.T) {
	p := post("c", "x", "x", "Go generics in practice", "2024-01-01", "golang")
	p.Excerpt = "Generics arrived in go 1.18."

	// go: title 5 + excerpt 3 + tag 4; generics: title 5 + excerpt 3;
	// full query "go generics" in title +6
	assert.Equal(t, 26, score(p, "go generics", []string{"go", "generics"}))
	assert.Equal(t, 24, score(p, "go go", []string{"go", "go"}), "repeated terms count again")
}
