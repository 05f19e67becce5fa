package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"workbench/internal/geom"
	"workbench/internal/ui/textutil"
)

// canvas is a fixed-size screen of styled lines. Blocks are spliced in at a
// position, replacing the columns they cover; later blocks draw on top.
type canvas struct {
	width, height int
	lines         []string
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: max(width, 0), height: max(height, 0)}
	blank := strings.Repeat(" ", c.width)
	c.lines = make([]string, c.height)
	for i := range c.lines {
		c.lines[i] = blank
	}
	return c
}

// draw splices block into the canvas with its top-left corner at (x, y).
// Parts of the block outside the canvas are clipped.
func (c *canvas) draw(x, y int, block string) {
	for i, line := range strings.Split(block, "\n") {
		c.drawLine(x, y+i, line)
	}
}

// drawRect fits block to r and draws it there.
func (c *canvas) drawRect(r geom.Rect, block string) {
	for i, line := range textutil.Block(block, r.Width, r.Height) {
		c.drawLine(r.X, r.Y+i, line)
	}
}

func (c *canvas) drawLine(x, y int, line string) {
	if y < 0 || y >= c.height || x >= c.width {
		return
	}
	w := ansi.StringWidth(line)
	if x < 0 {
		line = ansi.TruncateLeft(line, -x, "")
		w += x
		x = 0
	}
	if w <= 0 {
		return
	}
	if x+w > c.width {
		line = ansi.Truncate(line, c.width-x, "")
		w = c.width - x
	}
	base := c.lines[y]
	c.lines[y] = ansi.Truncate(base, x, "") + line + ansi.TruncateLeft(base, x+w, "")
}

// String renders the canvas.
func (c *canvas) String() string {
	return strings.Join(c.lines, "\n")
}
