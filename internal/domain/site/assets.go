package site

import (
	"net/url"
	"path"
	"strings"
)

// AssetExtensions are the file types served from a content directory.
var AssetExtensions = []string{"webp", "png", "jpg", "jpeg", "gif", "svg", "mp4", "pdf"}

func IsAssetFile(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, e := range AssetExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// AssetURL builds /<basePath>/content/<category>/<dirName>/<file> with the
// category and directory percent-encoded.
func AssetURL(basePath, category, dirName, file string) string {
	p := "/content/" + url.PathEscape(category) + "/" + url.PathEscape(dirName) + "/" + cleanRelative(file)
	return WithBase(basePath, collapseSlashes(p))
}

// JoinBaseHref resolves file against an explicit base href.
func JoinBaseHref(baseHref, file string) string {
	base := strings.TrimRight(baseHref, "/")
	scheme := ""
	if i := strings.Index(base, "://"); i >= 0 {
		scheme, base = base[:i+3], base[i+3:]
	}
	return scheme + collapseSlashes(base+"/"+cleanRelative(file))
}

// WithBase prefixes a root-relative path with the site base path.
func WithBase(basePath, p string) string {
	bp := strings.TrimRight(strings.TrimSpace(basePath), "/")
	if bp == "" {
		return p
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return bp + p
}

func cleanRelative(file string) string {
	for strings.HasPrefix(file, "./") {
		file = file[2:]
	}
	return strings.Trim(file, "/")
}

func collapseSlashes(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}
