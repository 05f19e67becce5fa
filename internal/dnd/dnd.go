// Package dnd derives docking instructions from drag gestures.
//
// Everything here is pure: Region and TabIndex turn pointer positions into
// drop regions, Derive turns a drag source plus a hit into an Instruction,
// and Controller sequences a gesture. Applying an instruction to live state is
// the engine's job.
package dnd

import (
	"math"

	"workbench/internal/geom"
)

// Thresholds size the edge strips of a group's content area. Each strip is
// max(Fraction*dimension, MinPx) deep, clipped to half the dimension.
type Thresholds struct {
	Fraction float64
	MinPx    int
}

// DefaultThresholds returns a 20% strip with a one-cell minimum.
func DefaultThresholds() Thresholds {
	return Thresholds{Fraction: 0.2, MinPx: 1}
}

func (t Thresholds) depth(dimension int) int {
	d := int(math.Round(t.Fraction * float64(dimension)))
	if d < t.MinPx {
		d = t.MinPx
	}
	if half := dimension / 2; d > half {
		d = half
	}
	return d
}

// Region returns the drop region of r under p using closest-edge detection:
// among the edge strips containing p, the edge nearest to p wins; ties go to
// left, right, top, bottom in that order. Outside every strip it is Center.
// p outside r also yields Center; callers hit-test first.
func Region(r geom.Rect, p geom.Point, th Thresholds) geom.Position {
	if !r.Contains(p) {
		return geom.Center
	}
	x, y := p.X-r.X, p.Y-r.Y
	tx, ty := th.depth(r.Width), th.depth(r.Height)

	best, bestDist := geom.Center, math.MaxInt
	try := func(pos geom.Position, dist, limit int) {
		if dist < limit && dist < bestDist {
			best, bestDist = pos, dist
		}
	}
	try(geom.Left, x, tx)
	try(geom.Right, r.Width-1-x, tx)
	try(geom.Top, y, ty)
	try(geom.Bottom, r.Height-1-y, ty)
	return best
}

// TabIndex returns the insertion index nearest to x in a strip of tab
// rectangles: before the first tab whose midpoint lies right of x, or after
// the last tab.
func TabIndex(tabs []geom.Rect, x int) int {
	for i, t := range tabs {
		if x < t.X+t.Width/2 {
			return i
		}
	}
	return len(tabs)
}
