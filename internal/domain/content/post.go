package content

import "strings"

type DocKind string

const (
	KindMarkdown DocKind = "md"
	KindMDX      DocKind = "mdx"
)

// PostMeta is derived once per content directory and never mutated after a
// scan completes. ID is "<category>/<dirName>".
type PostMeta struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	DirName  string `json:"dirName"`
	Slug     string `json:"slug"`

	// ISO calendar dates (YYYY-MM-DD).
	Date    string `json:"date"`
	Updated string `json:"updated,omitempty"`

	Title        string   `json:"title"`
	Excerpt      string   `json:"excerpt,omitempty"`
	Tags         []string `json:"tags"`
	Cover        string   `json:"cover,omitempty"`
	Draft        bool     `json:"draft"`
	CanonicalURL string   `json:"canonicalUrl,omitempty"`
	ReadingTime  int      `json:"readingTime"`

	SourcePath    string  `json:"sourcePath"`
	AssetBasePath string  `json:"assetBasePath"`
	Kind          DocKind `json:"kind"`
}

func (m PostMeta) Freshness() string {
	if m.Updated != "" {
		return m.Updated
	}
	return m.Date
}

func (m PostMeta) AssetBase() AssetBase {
	return AssetBase{Category: m.Category, DirName: m.DirName}
}

// HasTag compares case-insensitively.
func (m PostMeta) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range m.Tags {
		if strings.ToLower(t) == tag {
			return true
		}
	}
	return false
}

type TOCItem struct {
	ID    string `json:"id"`
	Depth int    `json:"depth"`
	Text  string `json:"text"`
}

// AssetBase identifies the directory relative asset URLs resolve against.
// BaseHref, when set, replaces the computed /content/<category>/<dirName> root.
type AssetBase struct {
	Category string
	DirName  string
	BaseHref string
}

// Normalize trims fields and drops blank or duplicate tags, keeping the
// author's casing of the first occurrence.
func (m *PostMeta) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Excerpt = strings.TrimSpace(m.Excerpt)
	m.Cover = strings.TrimSpace(m.Cover)
	m.CanonicalURL = strings.TrimSpace(m.CanonicalURL)
	m.Tags = normalizeStrings(m.Tags)
}

func normalizeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
