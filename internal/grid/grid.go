// Package grid implements the recursive branch/leaf tree behind the
// workbench layout and the layout pass that turns it into rectangles.
//
// Nodes live in a flat arena keyed by NodeID; the tree references ids only.
// Leaves reference groups by id. Only the root records an orientation: a
// branch at an even depth shares it, a branch at an odd depth uses the
// orthogonal one, so children of a horizontal branch are always vertical
// branches or leaves and vice versa.
//
// A Grid is not safe for concurrent use.
package grid

import (
	"fmt"
	"math"
	"strings"

	"workbench/internal/geom"
)

// Orientation is the main axis of a branch.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "VERTICAL"
	}
	return "HORIZONTAL"
}

// Orthogonal returns the other orientation.
func (o Orientation) Orthogonal() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// ParseOrientation accepts "HORIZONTAL" or "VERTICAL" in any case.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToUpper(s) {
	case "HORIZONTAL":
		return Horizontal, nil
	case "VERTICAL":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown orientation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Orientation) UnmarshalText(b []byte) error {
	v, err := ParseOrientation(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// axisOf maps an edge position to the orientation of the split it creates.
func axisOf(p geom.Position) Orientation {
	if p.Horizontal() {
		return Horizontal
	}
	return Vertical
}

// Constraints bound a leaf's size in pixels. A zero maximum means unbounded.
type Constraints struct {
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
}

// ConstraintSource reports the constraints of the group shown in a leaf.
type ConstraintSource func(groupID string) Constraints

// NodeID identifies a node in the arena. The zero value is never used.
type NodeID int

type node struct {
	id       NodeID
	parent   NodeID
	leaf     bool
	group    string
	children []NodeID
	size     float64

	rect    geom.Rect
	dirty   bool
	laidOut bool
}

// Grid is the tree of splits plus the container size it is laid out in.
type Grid struct {
	nodes       map[NodeID]*node
	leaves      map[string]NodeID
	root        NodeID
	next        NodeID
	orientation Orientation
	width       int
	height      int
	constraints ConstraintSource
}

// New returns an empty grid whose root branch has orientation o.
// src may be nil, in which case every leaf is unconstrained.
func New(o Orientation, src ConstraintSource) *Grid {
	g := &Grid{
		nodes:       make(map[NodeID]*node),
		leaves:      make(map[string]NodeID),
		orientation: o,
		constraints: src,
	}
	g.root = g.newNode(false, "", 1).id
	return g
}

func (g *Grid) newNode(leaf bool, group string, size float64) *node {
	g.next++
	n := &node{id: g.next, leaf: leaf, group: group, size: size, dirty: true}
	g.nodes[n.id] = n
	if leaf {
		g.leaves[group] = n.id
	}
	return n
}

func (g *Grid) deleteNode(n *node) {
	delete(g.nodes, n.id)
	if n.leaf && g.leaves[n.group] == n.id {
		delete(g.leaves, n.group)
	}
}

// Orientation returns the root orientation.
func (g *Grid) Orientation() Orientation { return g.orientation }

// Size returns the container size last passed to Layout.
func (g *Grid) Size() (width, height int) { return g.width, g.height }

// Empty reports whether the grid holds no leaves.
func (g *Grid) Empty() bool { return len(g.leaves) == 0 }

// Len returns the number of leaves.
func (g *Grid) Len() int { return len(g.leaves) }

// Has reports whether groupID is a leaf of the grid.
func (g *Grid) Has(groupID string) bool {
	_, ok := g.leaves[groupID]
	return ok
}

// Root returns the id of the root branch.
func (g *Grid) Root() NodeID { return g.root }

// Leaves returns group ids in depth-first order.
func (g *Grid) Leaves() []string {
	out := make([]string, 0, len(g.leaves))
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := g.nodes[id]
		if n.leaf {
			out = append(out, n.group)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(g.root)
	return out
}

// Weight returns the proportional size of the leaf holding groupID.
func (g *Grid) Weight(groupID string) (float64, bool) {
	id, ok := g.leaves[groupID]
	if !ok {
		return 0, false
	}
	return g.nodes[id].size, true
}

// Siblings returns the weights of every child of the branch containing
// groupID, in order, plus the leaf's index among them.
func (g *Grid) Siblings(groupID string) (weights []float64, index int, ok bool) {
	id, found := g.leaves[groupID]
	if !found {
		return nil, 0, false
	}
	p := g.nodes[g.nodes[id].parent]
	for i, c := range p.children {
		weights = append(weights, g.nodes[c].size)
		if c == id {
			index = i
		}
	}
	return weights, index, true
}

// Invalidate forces the next layout pass to re-flow the ancestors of groupID,
// for example after its constraints changed.
func (g *Grid) Invalidate(groupID string) {
	if id, ok := g.leaves[groupID]; ok {
		g.markDirty(id)
	}
}

func (g *Grid) markDirty(id NodeID) {
	for id != 0 {
		n := g.nodes[id]
		if n == nil {
			return
		}
		n.dirty = true
		id = n.parent
	}
}

// depth returns the number of edges between id and the root.
func (g *Grid) depth(id NodeID) int {
	d := 0
	for id != g.root {
		id = g.nodes[id].parent
		d++
	}
	return d
}

// orientationOf returns the main axis of branch id.
func (g *Grid) orientationOf(id NodeID) Orientation {
	if g.depth(id)%2 == 0 {
		return g.orientation
	}
	return g.orientation.Orthogonal()
}

func (g *Grid) indexOf(parent *node, child NodeID) int {
	for i, c := range parent.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (g *Grid) constraintsOf(groupID string) Constraints {
	if g.constraints == nil {
		return Constraints{}
	}
	return g.constraints(groupID)
}

const unbounded = math.MaxInt32

// bounds returns the min and max length of node id along orientation o.
func (g *Grid) bounds(id NodeID, o Orientation) (lo, hi int) {
	n := g.nodes[id]
	if n.leaf {
		c := g.constraintsOf(n.group)
		if o == Horizontal {
			lo, hi = c.MinWidth, c.MaxWidth
		} else {
			lo, hi = c.MinHeight, c.MaxHeight
		}
		if hi <= 0 {
			hi = unbounded
		}
		if hi < lo {
			hi = lo
		}
		return lo, hi
	}
	if len(n.children) == 0 {
		return 0, unbounded
	}
	if g.orientationOf(id) == o {
		for _, c := range n.children {
			clo, chi := g.bounds(c, o)
			lo += clo
			if hi != unbounded {
				if chi == unbounded {
					hi = unbounded
				} else {
					hi += chi
				}
			}
		}
		return lo, hi
	}
	hi = unbounded
	for _, c := range n.children {
		clo, chi := g.bounds(c, o)
		if clo > lo {
			lo = clo
		}
		if chi < hi {
			hi = chi
		}
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
