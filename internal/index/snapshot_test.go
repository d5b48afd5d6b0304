package index

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
)

func post(category, dirName, slug, title, date string, tags ...string) content.PostMeta {
	if tags == nil {
		tags = []string{}
	}
	return content.PostMeta{
		ID:       category + "/" + dirName,
		Category: category,
		DirName:  dirName,
		Slug:     slug,
		Title:    title,
		Date:     date,
		Tags:     tags,
		Kind:     content.KindMarkdown,
	}
}

func ids(posts []content.PostMeta) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func fixture() *Snapshot {
	updated := post("blog", "20240101_old", "old", "Old but updated", "2024-01-01", "Go")
	updated.Updated = "2024-06-01"
	draft := post("notes", "20240701_wip", "wip", "Work in progress", "2024-07-01", "go")
	draft.Draft = true

	return NewSnapshot([]content.PostMeta{
		post("blog", "20240315_hello-world", "hello-world", "Hello World", "2024-03-15", "intro"),
		post("notes", "20240315_alpha", "alpha", "Alpha", "2024-03-15", "Go", "intro"),
		updated,
		draft,
		post("blog", "20230101_first", "first", "First", "2023-01-01"),
	}, nil, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC))
}

func TestSnapshotFreshnessOrder(t *testing.T) {
	s := fixture()
	assert.Equal(t, []string{
		"notes/20240701_wip",
		"blog/20240101_old",
		"notes/20240315_alpha",
		"blog/20240315_hello-world",
		"blog/20230101_first",
	}, ids(s.Posts))
}

func TestFresher(t *testing.T) {
	a := post("c", "a", "a", "B title", "2024-01-02")
	b := post("c", "b", "b", "A title", "2024-01-01")
	assert.True(t, Fresher(a, b), "later date first")
	assert.False(t, Fresher(b, a))

	b.Date = a.Date
	assert.True(t, Fresher(b, a), "equal dates order by title")
}

func TestNewSnapshotDoesNotReorderInput(t *testing.T) {
	in := []content.PostMeta{
		post("c", "a", "a", "A", "2020-01-01"),
		post("c", "b", "b", "B", "2024-01-01"),
	}
	NewSnapshot(in, nil, time.Time{})
	assert.Equal(t, "c/a", in[0].ID)
}

func TestViewHidesDrafts(t *testing.T) {
	s := fixture()
	assert.Len(t, s.View(false).All(), 4)
	assert.Len(t, s.View(true).All(), 5)

	_, ok := s.Get("notes/20240701_wip")
	assert.True(t, ok, "raw snapshot keeps drafts")
}

func TestViewByCategory(t *testing.T) {
	v := fixture().View(false)
	assert.Equal(t, []string{"blog/20240101_old", "blog/20240315_hello-world", "blog/20230101_first"}, ids(v.ByCategory("blog")))
	assert.Empty(t, v.ByCategory("missing"))
	assert.NotNil(t, v.ByCategory("missing"))
}

func TestViewBySlug(t *testing.T) {
	v := fixture().View(false)

	got, err := v.BySlug("blog", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got.Title)

	got, err = v.BySlug("blog", "20240315_hello-world")
	require.NoError(t, err, "directory name works too")
	assert.Equal(t, "hello-world", got.Slug)

	_, err = v.BySlug("notes", "hello-world")
	assert.True(t, errors.Is(err, domainerr.ErrNotFound))

	_, err = v.BySlug("notes", "wip")
	assert.True(t, errors.Is(err, ErrNotFound), "drafts are not public")

	_, err = fixture().View(true).BySlug("notes", "wip")
	assert.NoError(t, err)
}

func TestViewCategories(t *testing.T) {
	assert.Equal(t, []string{"blog", "notes"}, fixture().View(false).Categories())

	hidden := post("drafts", "x", "x", "X", "2024-01-01")
	hidden.Draft = true
	only := NewSnapshot([]content.PostMeta{hidden}, nil, time.Time{})
	assert.Empty(t, only.View(false).Categories())
}

func TestViewTagStats(t *testing.T) {
	stats := fixture().View(false).TagStats()
	require.Len(t, stats, 2)
	assert.Equal(t, TagStat{Name: "Go", Count: 2, Path: "/tags/go"}, stats[0])
	assert.Equal(t, TagStat{Name: "intro", Count: 2, Path: "/tags/intro"}, stats[1])
}

func TestViewByTag(t *testing.T) {
	v := fixture().View(false)
	assert.Equal(t, []string{"blog/20240101_old", "notes/20240315_alpha"}, ids(v.ByTag("GO")))
	assert.Equal(t, ids(v.ByTag("go")), ids(v.ByTag("Go")))

	spaced := NewSnapshot([]content.PostMeta{post("c", "a", "a", "A", "2024-01-01", "Machine Learning")}, nil, time.Time{})
	assert.Len(t, spaced.View(false).ByTag("machine-learning"), 1, "tag url segment")
}

func TestViewRelated(t *testing.T) {
	s := fixture()
	alpha, ok := s.Get("notes/20240315_alpha")
	require.True(t, ok)

	v := s.View(false)
	assert.Equal(t, []string{"blog/20240101_old", "blog/20240315_hello-world"}, ids(v.Related(alpha, 0)))
	assert.Equal(t, []string{"blog/20240101_old"}, ids(v.Related(alpha, 1)))

	first, _ := s.Get("blog/20230101_first")
	assert.Empty(t, v.Related(first, 3))
}

func TestZeroViewIsEmpty(t *testing.T) {
	var v View
	assert.Empty(t, v.All())
	_, err := v.BySlug("a", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}
