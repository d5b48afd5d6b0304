package index

import (
	"sort"
	"strings"

	"kyon/internal/domain/content"
)

// Criteria narrows a search. From and To are inclusive YYYY-MM-DD bounds on
// a post's freshness date; Tags match when any one of them is present.
type Criteria struct {
	Query    string
	Tags     []string
	From     string
	To       string
	Category string
}

// Hit is a search result with its score. Score is 0 when no free-text query
// was given.
type Hit struct {
	Post  content.PostMeta `json:"post"`
	Score int              `json:"score"`
}

// Search returns the visible posts matching c in rank order.
func (v View) Search(c Criteria) []content.PostMeta {
	hits := v.SearchHits(c)
	out := make([]content.PostMeta, len(hits))
	for i, h := range hits {
		out[i] = h.Post
	}
	return out
}

// SearchHits applies the structural filters first, then scores the
// remainder against the query. Without a query the filtered set comes back
// unscored in freshness order.
func (v View) SearchHits(c Criteria) []Hit {
	tags := make(map[string]struct{}, len(c.Tags))
	for _, t := range c.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags[t] = struct{}{}
		}
	}

	items := v.filter(func(p content.PostMeta) bool {
		if c.Category != "" && p.Category != c.Category {
			return false
		}
		fresh := p.Freshness()
		if c.From != "" && fresh < c.From {
			return false
		}
		if c.To != "" && fresh > c.To {
			return false
		}
		if len(tags) > 0 && !anyTag(p, tags) {
			return false
		}
		return true
	})

	q := strings.ToLower(strings.TrimSpace(c.Query))
	hits := make([]Hit, 0, len(items))
	if q == "" {
		for _, p := range items {
			hits = append(hits, Hit{Post: p})
		}
		return hits
	}

	terms := strings.Fields(q)
	for _, p := range items {
		if s := score(p, q, terms); s > 0 {
			hits = append(hits, Hit{Post: p, Score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return Fresher(hits[i].Post, hits[j].Post)
	})
	return hits
}

func anyTag(p content.PostMeta, want map[string]struct{}) bool {
	for _, t := range p.Tags {
		if _, ok := want[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}

// score: +5 per term in the title, +3 per term in the excerpt, +4 per term
// found inside any tag; +6 when the whole query is in the title and +2 when
// it is in the excerpt. Repeated terms count again.
func score(p content.PostMeta, q string, terms []string) int {
	title := strings.ToLower(p.Title)
	excerpt := strings.ToLower(p.Excerpt)
	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = strings.ToLower(t)
	}

	s := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			s += 5
		}
		if strings.Contains(excerpt, term) {
			s += 3
		}
		for _, t := range tags {
			if strings.Contains(t, term) {
				s += 4
				break
			}
		}
	}
	if strings.Contains(title, q) {
		s += 6
	}
	if strings.Contains(excerpt, q) {
		s += 2
	}
	return s
}
