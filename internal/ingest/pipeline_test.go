package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
)

func writeDoc(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func fixedNow() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestScanHelloWorld(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/20240315_hello-world/index.md",
		"---\ntitle: \"Hello World\"\ntags: [\"intro\"]\n---\n# Hello World\n\nFirst paragraph here.\n\n## Section Two\n\nMore text.")

	res, err := Scan(context.Background(), Options{Root: root, Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	assert.Empty(t, res.Warnings)

	m := res.Posts[0]
	assert.Equal(t, "blog/20240315_hello-world", m.ID)
	assert.Equal(t, "hello-world", m.Slug)
	assert.Equal(t, "2024-03-15", m.Date)
	assert.Equal(t, "Hello World", m.Title)
	assert.Equal(t, "First paragraph here.", m.Excerpt)
	assert.Equal(t, []string{"intro"}, m.Tags)
	assert.Equal(t, 1, m.ReadingTime)
	assert.Equal(t, content.KindMarkdown, m.Kind)
}

func TestScanSkipsMalformedFrontmatter(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/20240101_good/index.md", "---\ntitle: Good\n---\nok")
	writeDoc(t, root, "blog/20240102_bad/index.md", "---\ntitle: [oops\n---\nbroken")

	res, err := Scan(context.Background(), Options{Root: root, Now: fixedNow})
	require.NoError(t, err)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "good", res.Posts[0].Slug)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Path, "20240102_bad")
}

func TestScanStrictFails(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/20240101_good/index.md", "ok")
	writeDoc(t, root, "blog/20240102_bad/index.md", "---\ntitle: x\n")

	_, err := Scan(context.Background(), Options{Root: root, Strict: true, Now: fixedNow})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrMalformedFrontmatter))
}

func TestScanDirectoryRules(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/20240101_both/index.md", "# MD")
	writeDoc(t, root, "blog/20240101_both/index.mdx", "# MDX")
	writeDoc(t, root, "blog/assets-only/photo.png", "png")
	writeDoc(t, root, "blog/.hidden/index.md", "# hidden")
	writeDoc(t, root, "notes/draft-one/index.md", "---\ndraft: true\n---\nwip")
	writeDoc(t, root, "stray.md", "# not in a category")

	res, err := Scan(context.Background(), Options{Root: root, Now: fixedNow, Workers: 2})
	require.NoError(t, err)
	require.Len(t, res.Posts, 2)

	byID := map[string]content.PostMeta{}
	for _, p := range res.Posts {
		byID[p.ID] = p
	}
	both := byID["blog/20240101_both"]
	assert.Equal(t, content.KindMDX, both.Kind)
	assert.Equal(t, "MDX", both.Title)

	draft := byID["notes/draft-one"]
	assert.True(t, draft.Draft, "drafts stay in the raw scan")
	assert.Equal(t, "2025-06-01", draft.Date)
}

func TestScanDuplicateSlugWarns(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/20240101_same/index.md", "a")
	writeDoc(t, root, "blog/20240202_same/index.md", "b")

	res, err := Scan(context.Background(), Options{Root: root, Now: fixedNow})
	require.NoError(t, err)
	assert.Len(t, res.Posts, 2)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Msg, "blog/20240101_same")
}

func TestScanMissingRoot(t *testing.T) {
	res, err := Scan(context.Background(), Options{Root: filepath.Join(t.TempDir(), "none")})
	require.NoError(t, err)
	assert.Empty(t, res.Posts)
}

func TestScanCancelled(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/a/index.md", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Scan(ctx, Options{Root: root})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListAssets(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "blog/20240101_p/index.md", "x")
	writeDoc(t, root, "blog/20240101_p/cover.webp", "x")
	writeDoc(t, root, "blog/20240101_p/notes.txt", "x")
	writeDoc(t, root, "blog/20240101_p/paper.PDF", "x")

	assets, err := ListAssets(root, "/kyon", "blog", "20240101_p")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "cover.webp", assets[0].Filename)
	assert.Equal(t, "content/blog/20240101_p/cover.webp", assets[0].Path)
	assert.Equal(t, "/kyon/content/blog/20240101_p/cover.webp", assets[0].URL)
	assert.Equal(t, "paper.PDF", assets[1].Filename)
}
