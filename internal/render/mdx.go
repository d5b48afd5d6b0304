package render

import (
	"fmt"
	"regexp"
	"strings"
)

// componentTag is the HTML element capitalized MDX components become before
// the Markdown pass; data-component keeps the original name.
const componentTag = "mdx-component"

var (
	reESM       = regexp.MustCompile(`^(import|export)\s`)
	reFenceOpen = regexp.MustCompile("^\\s{0,3}(```+|~~~+)")
)

type mdxSource struct {
	Body    string
	Imports []string
	Exports []string
}

type jsxFrame struct {
	name string
	line int
}

// preprocessMDX lifts top-level import/export statements out of the body,
// maps component tags onto componentTag elements and checks that component
// tags and {} expressions are balanced outside code.
func preprocessMDX(body string) (mdxSource, error) {
	var (
		src      mdxSource
		out      []string
		fence    string
		stack    []jsxFrame
		depth    int
		esm      []string
		esmDepth int
		pending  []string
		pendLine int
	)

	// flush gives up on a tag left open at a blank line and treats the
	// buffered lines as plain text.
	flush := func() error {
		for j, l := range pending {
			rewritten, err := rewriteLine(l, pendLine+j, &stack, &depth)
			if err != nil {
				return err
			}
			out = append(out, rewritten)
		}
		pending = nil
		return nil
	}

	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lineNo := i + 1

		if esm != nil {
			esm = append(esm, line)
			esmDepth += strings.Count(line, "{") - strings.Count(line, "}")
			if esmDepth <= 0 {
				src.addESM(esm)
				esm = nil
			}
			continue
		}

		if pending != nil {
			if strings.TrimSpace(line) == "" {
				if err := flush(); err != nil {
					return mdxSource{}, err
				}
			} else {
				pending = append(pending, line)
				joined := strings.Join(pending, "\n")
				if unfinishedTag(joined) {
					continue
				}
				line, lineNo = joined, pendLine
				pending = nil
			}
		}

		if fence != "" {
			if strings.HasPrefix(strings.TrimSpace(line), fence) {
				fence = ""
			}
			out = append(out, line)
			continue
		}
		if m := reFenceOpen.FindStringSubmatch(line); m != nil {
			fence = m[1]
			out = append(out, line)
			continue
		}

		if depth == 0 && len(stack) == 0 && reESM.MatchString(line) {
			d := strings.Count(line, "{") - strings.Count(line, "}")
			if d > 0 {
				esm, esmDepth = []string{line}, d
				continue
			}
			src.addESM([]string{line})
			continue
		}

		if unfinishedTag(line) {
			pending, pendLine = []string{line}, lineNo
			continue
		}
		rewritten, err := rewriteLine(line, lineNo, &stack, &depth)
		if err != nil {
			return mdxSource{}, err
		}
		out = append(out, rewritten)
	}

	if pending != nil {
		if err := flush(); err != nil {
			return mdxSource{}, err
		}
	}
	if esm != nil {
		return mdxSource{}, fmt.Errorf("unterminated %s statement", strings.Fields(esm[0])[0])
	}
	if depth > 0 {
		return mdxSource{}, fmt.Errorf("unclosed { expression")
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		return mdxSource{}, fmt.Errorf("line %d: unclosed <%s>", top.line, top.name)
	}
	src.Body = strings.Join(out, "\n")
	return src, nil
}

func (s *mdxSource) addESM(lines []string) {
	stmt := strings.Join(lines, "\n")
	if strings.HasPrefix(stmt, "import") {
		s.Imports = append(s.Imports, stmt)
	} else {
		s.Exports = append(s.Exports, stmt)
	}
}

// rewriteLine handles the parts of line outside inline code spans.
func rewriteLine(line string, lineNo int, stack *[]jsxFrame, depth *int) (string, error) {
	segments := strings.Split(line, "`")
	for i := 0; i < len(segments); i += 2 {
		seg, err := rewriteSegment(segments[i], lineNo, stack, depth)
		if err != nil {
			return "", err
		}
		segments[i] = seg
	}
	return strings.Join(segments, "`"), nil
}

func rewriteSegment(seg string, lineNo int, stack *[]jsxFrame, depth *int) (string, error) {
	var b strings.Builder
	pos := 0
	for {
		tag, found, _ := scanTag(seg, pos)
		text := seg[pos:]
		if found {
			text = seg[pos:tag.start]
		}
		if err := countBraces(text, lineNo, depth); err != nil {
			return "", err
		}
		b.WriteString(text)
		if !found {
			return b.String(), nil
		}

		switch {
		case tag.closing:
			if len(*stack) == 0 || (*stack)[len(*stack)-1].name != tag.name {
				return "", fmt.Errorf("line %d: unexpected </%s>", lineNo, tag.name)
			}
			*stack = (*stack)[:len(*stack)-1]
			b.WriteString("</" + componentTag + ">")
		case tag.self:
			b.WriteString(openComponent(tag.name, tag.attrs) + "</" + componentTag + ">")
		default:
			*stack = append(*stack, jsxFrame{name: tag.name, line: lineNo})
			b.WriteString(openComponent(tag.name, tag.attrs))
		}
		pos = tag.end
	}
}

func countBraces(text string, lineNo int, depth *int) error {
	for _, r := range text {
		switch r {
		case '{':
			*depth++
		case '}':
			*depth--
			if *depth < 0 {
				return fmt.Errorf("line %d: unexpected }", lineNo)
			}
		}
	}
	return nil
}

// jsxTag is one component tag in a line; start and end are byte offsets.
type jsxTag struct {
	start, end int
	name       string
	attrs      string
	closing    bool
	self       bool
}

// unfinishedTag reports a component tag that opens outside inline code but
// does not close before the end of s.
func unfinishedTag(s string) bool {
	segments := strings.Split(s, "`")
	for i := 0; i < len(segments); i += 2 {
		pos := 0
		for {
			tag, found, open := scanTag(segments[i], pos)
			if open {
				return true
			}
			if !found {
				break
			}
			pos = tag.end
		}
	}
	return false
}

// scanTag finds the next component tag at or after from. Quoted attribute
// values and {} expressions may contain '>'. open is set when a tag starts
// but s ends before its closing '>'.
func scanTag(s string, from int) (tag jsxTag, found, open bool) {
	for i := from; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		j := i + 1
		closing := j < len(s) && s[j] == '/'
		if closing {
			j++
		}
		if j >= len(s) || s[j] < 'A' || s[j] > 'Z' {
			continue
		}
		k := j
		for k < len(s) && isTagNameByte(s[k]) {
			k++
		}
		if k < len(s) && !isTagBoundary(s[k]) {
			continue
		}
		gt := tagEnd(s, k)
		if gt < 0 {
			return jsxTag{}, false, true
		}
		tag = jsxTag{start: i, name: s[j:k], closing: closing}
		attrs := strings.TrimRight(s[k:gt], " \t\n")
		if strings.HasSuffix(attrs, "/") {
			tag.self = true
			attrs = strings.TrimRight(attrs[:len(attrs)-1], " \t\n")
		}
		tag.attrs, tag.end = attrs, gt+1
		return tag, true, false
	}
	return jsxTag{}, false, false
}

// tagEnd returns the index of the '>' closing a tag whose attributes start
// at from, or -1.
func tagEnd(s string, from int) int {
	var quote byte
	braces := 0
	for i := from; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{':
			braces++
		case c == '}':
			if braces > 0 {
				braces--
			}
		case c == '>' && braces == 0:
			return i
		}
	}
	return -1
}

func isTagNameByte(c byte) bool {
	return c == '_' || c == '.' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isTagBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '/' || c == '>'
}

// attrFlattener keeps a multi-line tag on one line so it still opens an
// HTML block.
var attrFlattener = strings.NewReplacer("\n", " ", "\t", " ")

func openComponent(name, attrs string) string {
	if attrs != "" {
		attrs = " " + strings.TrimLeft(attrFlattener.Replace(attrs), " ")
	}
	return "<" + componentTag + ` data-component="` + name + `"` + attrs + ">"
}
