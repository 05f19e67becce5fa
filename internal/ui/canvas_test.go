package ui

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"workbench/internal/geom"
)

func TestCanvas_DrawClipsAndOverlays(t *testing.T) {
	c := newCanvas(6, 3)
	c.draw(1, 0, "abc\ndef")
	c.draw(4, 1, "XYZ")
	c.draw(-1, 2, "123")

	assert.Equal(t, " abc  \n defXY\n23    ", c.String())
}

func TestCanvas_StyledLinesKeepWidth(t *testing.T) {
	c := newCanvas(8, 1)
	c.draw(0, 0, Styles.TabFocused.Render("tab"))
	c.draw(2, 0, "|")

	out := c.String()
	assert.Equal(t, "ta|     ", ansi.Strip(out))
	assert.Equal(t, 8, ansi.StringWidth(out))
}

func TestCanvas_DrawRectFits(t *testing.T) {
	c := newCanvas(5, 3)
	c.drawRect(geom.Rect{X: 1, Y: 1, Width: 3, Height: 2}, "long line\nx\nignored")

	assert.Equal(t, "     \n lon \n x   ", c.String())
}

func TestFrameAndHalf(t *testing.T) {
	c := newCanvas(4, 3)
	c.draw(1, 1, "ab")
	frame(c, geom.Rect{Width: 4, Height: 3}, Styles.Normal)
	assert.Equal(t, "┌──┐\n│ab│\n└──┘", ansi.Strip(c.String()))

	r := geom.Rect{X: 10, Y: 4, Width: 9, Height: 5}
	assert.Equal(t, geom.Rect{X: 15, Y: 4, Width: 4, Height: 5}, half(r, geom.Right))
	assert.Equal(t, geom.Rect{X: 10, Y: 4, Width: 4, Height: 5}, half(r, geom.Left))
	assert.Equal(t, geom.Rect{X: 10, Y: 7, Width: 9, Height: 2}, half(r, geom.Bottom))
}
