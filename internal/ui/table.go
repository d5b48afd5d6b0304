package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"kyon/internal/domain/content"
	"kyon/internal/paging"
)

// Table aligns cells into columns without borders. Widths are measured
// with lipgloss so styled cells line up.
type Table struct {
	rows      [][]string
	colWidths []int
	padding   int
}

func NewTable(cols int) *Table {
	return &Table{colWidths: make([]int, cols), padding: 2}
}

func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.colWidths))
	for i := 0; i < len(row) && i < len(cells); i++ {
		row[i] = cells[i]
		if w := lipgloss.Width(cells[i]); w > t.colWidths[i] {
			t.colWidths[i] = w
		}
	}
	t.rows = append(t.rows, row)
}

func (t *Table) String() string {
	var sb strings.Builder
	pad := strings.Repeat(" ", t.padding)
	for _, row := range t.rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString(pad)
			}
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", t.colWidths[i]-lipgloss.Width(cell)))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// PostTable lists posts one per line: date, category/slug, title, tags.
func PostTable(posts []content.PostMeta) string {
	if len(posts) == 0 {
		return Muted.Render("no posts") + "\n"
	}
	t := NewTable(4)
	for _, p := range posts {
		title := p.Title
		if p.Draft {
			title += Muted.Render(" (draft)")
		}
		t.AddRow(
			Muted.Render(p.Freshness()),
			Accent.Render(p.Category+"/"+p.Slug),
			title,
			Muted.Render(strings.Join(p.Tags, ", ")),
		)
	}
	return t.String()
}

func PageFooter[T any](p paging.Page[T]) string {
	return Muted.Render(fmt.Sprintf("page %d/%d · %d total", p.Page, p.PageCount, p.Total)) + "\n"
}

// TOC renders table-of-contents entries indented by depth.
func TOC(items []content.TOCItem) string {
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(strings.Repeat("  ", max(it.Depth-2, 0)))
		sb.WriteString(Muted.Render("- "))
		sb.WriteString(it.Text)
		sb.WriteString(Muted.Render(" #" + it.ID))
		sb.WriteString("\n")
	}
	return sb.String()
}

// PostHeader is the title block printed above a rendered post.
func PostHeader(m content.PostMeta) string {
	var sb strings.Builder
	sb.WriteString(AccentBold.Render(m.Title))
	sb.WriteString("\n")
	line := fmt.Sprintf("%s · %s · %d min", m.Category, m.Freshness(), m.ReadingTime)
	if len(m.Tags) > 0 {
		line += " · " + strings.Join(m.Tags, ", ")
	}
	sb.WriteString(Muted.Render(line))
	sb.WriteString("\n")
	return sb.String()
}
