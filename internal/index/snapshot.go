package index

import (
	"sort"
	"strings"
	"time"

	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
	"kyon/internal/domain/site"
	"kyon/internal/ingest"
)

var ErrNotFound = domainerr.ErrNotFound

// Snapshot is one complete scan result. It is immutable once built; a
// refresh produces a new Snapshot instead of editing this one.
type Snapshot struct {
	// Posts holds every scanned post, drafts included, in freshness order.
	Posts    []content.PostMeta `json:"posts"`
	Warnings []ingest.Warning   `json:"warnings,omitempty"`
	BuiltAt  time.Time          `json:"builtAt"`

	byID map[string]int
}

func NewSnapshot(posts []content.PostMeta, warnings []ingest.Warning, builtAt time.Time) *Snapshot {
	sorted := make([]content.PostMeta, len(posts))
	copy(sorted, posts)
	SortByFreshness(sorted)

	byID := make(map[string]int, len(sorted))
	for i, p := range sorted {
		byID[p.ID] = i
	}
	return &Snapshot{
		Posts:    sorted,
		Warnings: warnings,
		BuiltAt:  builtAt,
		byID:     byID,
	}
}

// Fresher reports whether a sorts before b: later (updated or date) first,
// equal dates by title ascending.
func Fresher(a, b content.PostMeta) bool {
	af, bf := a.Freshness(), b.Freshness()
	if af != bf {
		return af > bf
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}

func SortByFreshness(posts []content.PostMeta) {
	sort.SliceStable(posts, func(i, j int) bool {
		return Fresher(posts[i], posts[j])
	})
}

// Get looks a post up by its "<category>/<dirName>" id, drafts included.
func (s *Snapshot) Get(id string) (content.PostMeta, bool) {
	i, ok := s.byID[id]
	if !ok {
		return content.PostMeta{}, false
	}
	return s.Posts[i], true
}

// View returns the query surface over s. Drafts are hidden unless
// includeDrafts is set.
func (s *Snapshot) View(includeDrafts bool) View {
	return View{snap: s, drafts: includeDrafts}
}

// View answers the read queries over one snapshot. Every result is in
// freshness order unless noted otherwise.
type View struct {
	snap   *Snapshot
	drafts bool
}

func (v View) visible(m content.PostMeta) bool {
	return v.drafts || !m.Draft
}

func (v View) filter(keep func(content.PostMeta) bool) []content.PostMeta {
	out := []content.PostMeta{}
	if v.snap == nil {
		return out
	}
	for _, p := range v.snap.Posts {
		if v.visible(p) && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (v View) All() []content.PostMeta {
	return v.filter(func(content.PostMeta) bool { return true })
}

func (v View) ByCategory(category string) []content.PostMeta {
	return v.filter(func(p content.PostMeta) bool { return p.Category == category })
}

func (v View) ByID(id string) (content.PostMeta, error) {
	if v.snap != nil {
		if p, ok := v.snap.Get(id); ok && v.visible(p) {
			return p, nil
		}
	}
	return content.PostMeta{}, ErrNotFound
}

// BySlug accepts either the post slug or its raw directory name.
func (v View) BySlug(category, slug string) (content.PostMeta, error) {
	if v.snap != nil {
		for _, p := range v.snap.Posts {
			if p.Category != category || !v.visible(p) {
				continue
			}
			if p.Slug == slug || p.DirName == slug {
				return p, nil
			}
		}
	}
	return content.PostMeta{}, ErrNotFound
}

// Categories lists the distinct categories of visible posts, sorted.
func (v View) Categories() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range v.All() {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

type TagStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Path  string `json:"path"`
}

// TagStats groups tags case-insensitively, naming each group after the
// casing seen first in freshness order. Sorted by count desc, then name.
func (v View) TagStats() []TagStat {
	idx := map[string]int{}
	out := []TagStat{}
	for _, p := range v.All() {
		for _, t := range p.Tags {
			key := strings.ToLower(t)
			if i, ok := idx[key]; ok {
				out[i].Count++
				continue
			}
			idx[key] = len(out)
			out = append(out, TagStat{Name: t, Count: 1, Path: site.TagPath(t)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// ByTag matches a tag name case-insensitively, or its URL segment.
func (v View) ByTag(tag string) []content.PostMeta {
	return v.filter(func(p content.PostMeta) bool {
		if p.HasTag(tag) {
			return true
		}
		for _, t := range p.Tags {
			if site.TagSegment(t) == tag {
				return true
			}
		}
		return false
	})
}

// Related returns other visible posts sharing at least one tag with m.
// limit <= 0 means no limit.
func (v View) Related(m content.PostMeta, limit int) []content.PostMeta {
	out := v.filter(func(p content.PostMeta) bool {
		if p.ID == m.ID {
			return false
		}
		for _, t := range m.Tags {
			if p.HasTag(t) {
				return true
			}
		}
		return false
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
