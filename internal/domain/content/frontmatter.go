package content

// Frontmatter holds the recognized metadata keys. Unrecognized keys stay in
// Extra untouched.
type Frontmatter struct {
	Title        string
	Date         string
	Updated      string
	Excerpt      string
	Summary      string
	Tags         []string
	Cover        string
	Draft        bool
	CanonicalURL string

	// ReadingTime is an explicit override in minutes; zero means unset.
	ReadingTime float64

	Extra map[string]any
}
