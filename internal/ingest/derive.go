package ingest

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"kyon/internal/domain/content"
	"kyon/internal/slug"
)

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 220

// MaxReadingTime caps a frontmatter readingTime override.
const MaxReadingTime = math.MaxInt32

var (
	reDatePrefix   = regexp.MustCompile(`^\d{8}`)
	reSlugPrefix   = regexp.MustCompile(`^\d{8}[_-]?`)
	reFence        = regexp.MustCompile("(?s)```.*?```")
	reHeadingLine  = regexp.MustCompile(`(?m)^[ \t]*#.+$`)
	reParagraphGap = regexp.MustCompile(`\n{2,}`)
	reFirstHeading = regexp.MustCompile(`(?m)^[ \t]*#[ \t]+(.+?)[ \t]*$`)
	reWord         = regexp.MustCompile(`[\p{L}\p{N}’'-]+`)
)

// SlugFromDir strips a YYYYMMDD prefix, maps underscores to hyphens and
// slugifies the rest.
func SlugFromDir(dirName string) string {
	rest := reSlugPrefix.ReplaceAllString(dirName, "")
	if rest == "" {
		rest = dirName
	}
	return slug.Slugify(strings.ReplaceAll(rest, "_", "-"))
}

// DateFromDir reads a YYYYMMDD prefix. Invalid calendar dates are rejected.
func DateFromDir(dirName string) (string, bool) {
	p := reDatePrefix.FindString(dirName)
	if p == "" {
		return "", false
	}
	t, err := time.Parse("20060102", p)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// FirstHeading finds the first "# " heading with a line scan.
func FirstHeading(body string) string {
	m := reFirstHeading.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// FirstParagraph skips fenced code and heading lines and returns the first
// non-empty paragraph with newlines folded into spaces.
func FirstParagraph(body string) string {
	cleaned := reFence.ReplaceAllString(strings.ReplaceAll(body, "\r\n", "\n"), "")
	cleaned = strings.TrimSpace(reHeadingLine.ReplaceAllString(cleaned, ""))
	for _, p := range reParagraphGap.Split(cleaned, -1) {
		if strings.TrimSpace(p) == "" {
			continue
		}
		return strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
	}
	return ""
}

// TitleFromDir is the last-resort title: "20240315_hello_world" becomes
// "Hello World".
func TitleFromDir(dirName string) string {
	rest := reSlugPrefix.ReplaceAllString(dirName, "")
	rest = strings.Join(strings.FieldsFunc(rest, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}), " ")
	if rest == "" {
		return "Untitled"
	}
	return cases.Title(language.Und).String(rest)
}

func CountWords(body string) int {
	return len(reWord.FindAllStringIndex(body, -1))
}

// ReadingTime returns ceil(override) for a positive override, otherwise
// ceil(words/WordsPerMinute). Never below 1. Overrides are capped at
// MaxReadingTime so they always fit an int.
func ReadingTime(body string, override float64) int {
	if override > 0 {
		return int(min(math.Ceil(override), MaxReadingTime))
	}
	minutes := int(math.Ceil(float64(CountWords(body)) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// BuildMeta derives the metadata record for one content directory from its
// parsed index document.
func BuildMeta(src SourceDir, doc Parsed, now time.Time) (content.PostMeta, []Warning) {
	fm := DecodeFrontmatter(doc.Data)
	var warns []Warning

	m := content.PostMeta{
		ID:            src.ID(),
		Category:      src.Category,
		DirName:       src.DirName,
		Slug:          SlugFromDir(src.DirName),
		Updated:       fm.Updated,
		Tags:          fm.Tags,
		Cover:         fm.Cover,
		Draft:         fm.Draft,
		CanonicalURL:  fm.CanonicalURL,
		ReadingTime:   ReadingTime(doc.Content, fm.ReadingTime),
		SourcePath:    src.IndexPath,
		AssetBasePath: filepath.Dir(src.IndexPath),
		Kind:          src.Kind,
	}

	switch {
	case fm.Title != "":
		m.Title = fm.Title
	case FirstHeading(doc.Content) != "":
		m.Title = FirstHeading(doc.Content)
	default:
		m.Title = TitleFromDir(src.DirName)
	}

	switch {
	case fm.Excerpt != "":
		m.Excerpt = fm.Excerpt
	case fm.Summary != "":
		m.Excerpt = fm.Summary
	default:
		m.Excerpt = FirstParagraph(doc.Content)
	}

	if fm.Date != "" {
		m.Date = fm.Date
	} else if d, ok := DateFromDir(src.DirName); ok {
		m.Date = d
	} else {
		m.Date = now.Format(time.DateOnly)
		if _, set := doc.Data["date"]; set {
			warns = append(warns, Warning{Path: src.IndexPath, Msg: "unparseable date, using scan date"})
		}
	}
	if _, set := doc.Data["updated"]; set && fm.Updated == "" {
		warns = append(warns, Warning{Path: src.IndexPath, Msg: "unparseable updated date ignored"})
	}

	m.Normalize()
	return m, warns
}
