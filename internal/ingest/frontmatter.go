package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
)

var errUnterminated = errors.New("unterminated metadata block")

const (
	delimYAML = "---"
	delimTOML = "+++"
)

// Parsed is a document split into its metadata block and body.
type Parsed struct {
	Data    map[string]any
	Content string
}

// ParseFrontmatter splits raw into metadata and body. "---" opens a YAML
// block, "+++" a TOML block. Without a block Data is empty and Content is raw
// unchanged. Errors wrap domainerr.ErrMalformedFrontmatter.
func ParseFrontmatter(raw []byte) (Parsed, error) {
	norm := bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	norm = bytes.ReplaceAll(norm, []byte("\r\n"), []byte("\n"))

	first, rest, _ := bytes.Cut(norm, []byte("\n"))
	delim := string(bytes.TrimRight(first, " \t"))
	if delim != delimYAML && delim != delimTOML {
		return Parsed{Data: map[string]any{}, Content: string(raw)}, nil
	}

	block, body, ok := cutClosing(rest, delim)
	if !ok {
		return Parsed{}, fmt.Errorf("%w: %v", domainerr.ErrMalformedFrontmatter, errUnterminated)
	}

	data := map[string]any{}
	if len(bytes.TrimSpace(block)) > 0 {
		var err error
		if delim == delimYAML {
			err = yaml.Unmarshal(block, &data)
		} else {
			err = toml.Unmarshal(block, &data)
		}
		if err != nil {
			return Parsed{}, fmt.Errorf("%w: %v", domainerr.ErrMalformedFrontmatter, err)
		}
		if data == nil {
			data = map[string]any{}
		}
	}
	return Parsed{Data: data, Content: string(body)}, nil
}

// cutClosing finds the line holding only delim and returns what precedes and
// follows it.
func cutClosing(rest []byte, delim string) (block, body []byte, ok bool) {
	off := 0
	for off <= len(rest) {
		line := rest[off:]
		next := len(rest)
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = off + i + 1
		}
		if string(bytes.TrimRight(line, " \t")) == delim {
			return rest[:off], rest[next:], true
		}
		if next >= len(rest) {
			break
		}
		off = next
	}
	return nil, nil, false
}

// DecodeFrontmatter maps loosely typed metadata onto the recognized keys.
// Values of the wrong type are ignored, like absent keys.
func DecodeFrontmatter(data map[string]any) content.Frontmatter {
	fm := content.Frontmatter{Extra: map[string]any{}}
	for k, v := range data {
		switch k {
		case "title":
			fm.Title = stringValue(v)
		case "date":
			fm.Date = dateValue(v)
		case "updated":
			fm.Updated = dateValue(v)
		case "excerpt":
			fm.Excerpt = stringValue(v)
		case "summary":
			fm.Summary = stringValue(v)
		case "tags":
			fm.Tags = stringList(v)
		case "cover":
			fm.Cover = stringValue(v)
		case "draft":
			fm.Draft, _ = v.(bool)
		case "canonicalUrl":
			fm.CanonicalURL = stringValue(v)
		case "readingTime":
			fm.ReadingTime = numberValue(v)
		default:
			fm.Extra[k] = v
		}
	}
	return fm
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringList(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func numberValue(v any) float64 {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// dateValue accepts the string layouts of ParseTime and the native date
// values YAML and TOML decoders produce, returning YYYY-MM-DD or "".
func dateValue(v any) string {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return ""
		}
		return d.Format(time.DateOnly)
	case string:
		t := ParseTime(strings.TrimSpace(d))
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	}
	return ""
}

// ParseTime tries the common frontmatter layouts; the zero time means none
// matched.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		time.DateOnly,
		"2006-01-02 15:04",
		time.DateTime,
		"2006/01/02",
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
