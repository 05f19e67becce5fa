package ui

import (
	"slices"

	"workbench/internal/geom"
)

// FocusManager rotates focus across groups. Order is refreshed from the
// engine before each move; OnChange applies the new focus.
type FocusManager struct {
	Current  string   // focused group id
	Order    []string // rotation order
	OnChange func(from, to string)
}

// Sync replaces the rotation order and current focus without firing
// OnChange.
func (f *FocusManager) Sync(order []string, current string) {
	f.Order = order
	f.Current = current
}

// Next moves focus to the next group in order and returns it.
func (f *FocusManager) Next() string {
	return f.step(1)
}

// Prev moves focus to the previous group in order and returns it.
func (f *FocusManager) Prev() string {
	return f.step(-1)
}

func (f *FocusManager) step(d int) string {
	if len(f.Order) == 0 {
		return ""
	}
	idx := slices.Index(f.Order, f.Current)
	if idx < 0 && d < 0 {
		idx = 0
	}
	next := (idx + d + len(f.Order)) % len(f.Order)
	f.set(f.Order[next])
	return f.Current
}

// SetFocus focuses id. Returns false if id is not in Order.
func (f *FocusManager) SetFocus(id string) bool {
	if !slices.Contains(f.Order, id) {
		return false
	}
	f.set(id)
	return true
}

func (f *FocusManager) set(id string) {
	from := f.Current
	f.Current = id
	if f.OnChange != nil && from != id {
		f.OnChange(from, id)
	}
}

// Toward moves focus to the nearest group in direction dir from the
// current one, using the groups' rectangles. Returns false if there is none.
func (f *FocusManager) Toward(dir geom.Position, rects map[string]geom.Rect) bool {
	cur, ok := rects[f.Current]
	if !ok {
		return false
	}
	best, bestDist := "", 0
	for _, id := range f.Order {
		r, ok := rects[id]
		if !ok || id == f.Current {
			continue
		}
		dist, ok := directional(cur, r, dir)
		if ok && (best == "" || dist < bestDist) {
			best, bestDist = id, dist
		}
	}
	if best == "" {
		return false
	}
	f.set(best)
	return true
}

// directional returns how far r lies from cur in direction dir, or false if
// r is not on that side. Overlap on the other axis is required.
func directional(cur, r geom.Rect, dir geom.Position) (int, bool) {
	overlapX := r.X < cur.X+cur.Width && cur.X < r.X+r.Width
	overlapY := r.Y < cur.Y+cur.Height && cur.Y < r.Y+r.Height
	switch dir {
	case geom.Left:
		return cur.X - (r.X + r.Width), overlapY && r.X+r.Width <= cur.X
	case geom.Right:
		return r.X - (cur.X + cur.Width), overlapY && r.X >= cur.X+cur.Width
	case geom.Top:
		return cur.Y - (r.Y + r.Height), overlapX && r.Y+r.Height <= cur.Y
	case geom.Bottom:
		return r.Y - (cur.Y + cur.Height), overlapX && r.Y >= cur.Y+cur.Height
	}
	return 0, false
}
