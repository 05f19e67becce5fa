// Package geom holds the small geometric primitives shared by the grid,
// the docking controller and the engine: integer rectangles, points and
// drop positions.
package geom

import "fmt"

// Point is a pointer location in container coordinates.
type Point struct {
	X, Y int
}

// Rect is an integer rectangle. Width and Height are never negative.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Contains reports whether p lies inside r (right and bottom edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Position names a drop region of a group: one of the four edges or the center.
type Position string

const (
	Top    Position = "top"
	Bottom Position = "bottom"
	Left   Position = "left"
	Right  Position = "right"
	Center Position = "center"
)

// IsEdge reports whether p is one of the four edge positions.
func (p Position) IsEdge() bool {
	switch p {
	case Top, Bottom, Left, Right:
		return true
	}
	return false
}

// Horizontal reports whether the split implied by p lays items out side by side.
func (p Position) Horizontal() bool {
	return p == Left || p == Right
}

// Before reports whether an item inserted at p precedes the reference item.
func (p Position) Before() bool {
	return p == Left || p == Top
}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	return p == Center || p.IsEdge()
}
