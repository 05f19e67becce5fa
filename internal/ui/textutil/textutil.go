// Package textutil measures and fits text to terminal columns. Plain text is
// measured with go-runewidth; styled text (ANSI sequences) with x/ansi.
package textutil

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Width returns the number of columns plain text occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens plain text to at most max columns, ending in an
// ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if Width(s) <= max {
		return s
	}
	avail := max - Width(Ellipsis)
	if avail <= 0 {
		return Ellipsis
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > avail {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + Ellipsis
}

// PadRight pads plain text with spaces to exactly width columns, truncating
// if it is wider.
func PadRight(s string, width int) string {
	w := Width(s)
	if w >= width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// Center places plain text in the middle of width columns.
func Center(s string, width int) string {
	s = Truncate(s, width)
	gap := width - Width(s)
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// Fit makes a styled line exactly width columns: cut if wider, padded with
// spaces if narrower. Escape sequences are preserved.
func Fit(line string, width int) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(line)
	if w > width {
		return ansi.Truncate(line, width, "")
	}
	return line + strings.Repeat(" ", width-w)
}

// Block fits styled text to a width x height rectangle, one line per row.
func Block(s string, width, height int) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		var l string
		if i < len(lines) {
			l = lines[i]
		}
		out[i] = Fit(l, width)
	}
	return out
}
