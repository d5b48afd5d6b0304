package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const DefaultWidth = 100

// RenderMarkdown renders a post body for the terminal. Without color the
// plain "notty" style is used so output stays readable when piped.
func RenderMarkdown(body string, width int, color bool) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	style := "notty"
	if color {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(body)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
