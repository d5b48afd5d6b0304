// Package slug turns arbitrary text into URL-safe tokens.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is returned for text with no usable characters.
const Fallback = "section"

// Slugify lowercases s, strips diacritics, drops everything outside
// [a-z0-9], whitespace and '-', then turns whitespace runs into single
// hyphens. Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	inSpace := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			if inSpace && b.Len() > 0 {
				b.WriteByte('-')
			}
			inSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			inSpace = true
		}
	}

	out := strings.Trim(b.String(), "-")
	if out == "" {
		return Fallback
	}
	return out
}

// Slugger hands out ids unique within one document. It is not safe for
// concurrent use; every compile gets its own.
type Slugger struct {
	counts map[string]int
	issued map[string]struct{}
}

func NewSlugger() *Slugger {
	return &Slugger{
		counts: make(map[string]int),
		issued: make(map[string]struct{}),
	}
}

// Slug returns Slugify(text) on its first occurrence and "<base>-N" for the
// Nth. When a suffixed candidate is already taken the counter keeps going.
func (s *Slugger) Slug(text string) string {
	base := Slugify(text)
	for {
		s.counts[base]++
		n := s.counts[base]
		id := base
		if n > 1 {
			id = base + "-" + strconv.Itoa(n)
		}
		if _, taken := s.issued[id]; taken {
			continue
		}
		s.issued[id] = struct{}{}
		return id
	}
}

// Reserve marks an id that is already present in the document so generated
// ids never collide with it.
func (s *Slugger) Reserve(id string) {
	if id == "" {
		return
	}
	s.issued[id] = struct{}{}
}
