package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
)

// SourceDir is one <root>/<category>/<dirName> holding an index document.
type SourceDir struct {
	Category  string
	DirName   string
	Dir       string
	IndexPath string
	Kind      content.DocKind
}

func (s SourceDir) ID() string {
	return s.Category + "/" + s.DirName
}

type AssetRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}

// DiscoverSource lists content directories, categories and directories in
// name order. Directories without index.md or index.mdx are skipped; when
// both exist index.mdx wins. A missing root yields no entries.
func DiscoverSource(root string) ([]SourceDir, error) {
	cats, err := subdirs(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []SourceDir
	for _, cat := range cats {
		catDir := filepath.Join(root, cat)
		dirs, err := subdirs(catDir)
		if err != nil {
			return nil, err
		}
		for _, name := range dirs {
			dir := filepath.Join(catDir, name)
			idx, kind, ok := findIndex(dir)
			if !ok {
				continue
			}
			out = append(out, SourceDir{
				Category:  cat,
				DirName:   name,
				Dir:       dir,
				IndexPath: idx,
				Kind:      kind,
			})
		}
	}
	return out, nil
}

func subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func findIndex(dir string) (string, content.DocKind, bool) {
	for _, c := range []struct {
		name string
		kind content.DocKind
	}{
		{"index.mdx", content.KindMDX},
		{"index.md", content.KindMarkdown},
	} {
		p := filepath.Join(dir, c.name)
		if st, err := os.Stat(p); err == nil && st.Mode().IsRegular() {
			return p, c.kind, true
		}
	}
	return "", "", false
}

// ListAssets returns the servable files of one content directory.
func ListAssets(root, basePath, category, dirName string) ([]AssetRef, error) {
	dir := filepath.Join(root, category, dirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []AssetRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "index.md" || name == "index.mdx" || !site.IsAssetFile(name) {
			continue
		}
		out = append(out, AssetRef{
			Filename: name,
			Path:     filepath.ToSlash(filepath.Join("content", category, dirName, name)),
			URL:      site.AssetURL(basePath, category, dirName, name),
		})
	}
	return out, nil
}
