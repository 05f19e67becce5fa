package grid

import (
	"math"

	"workbench/internal/geom"
)

// Layout sets the container size. Rectangles are recomputed lazily on the
// next query, and only for nodes that are dirty or whose rectangle changed.
func (g *Grid) Layout(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == g.width && height == g.height {
		return
	}
	g.width, g.height = width, height
	g.nodes[g.root].dirty = true
}

func (g *Grid) ensureLayout() {
	g.layoutNode(g.root, geom.Rect{Width: g.width, Height: g.height})
}

func (g *Grid) layoutNode(id NodeID, r geom.Rect) {
	n := g.nodes[id]
	if n.laidOut && !n.dirty && n.rect == r {
		return
	}
	n.rect = r
	n.laidOut = true
	n.dirty = false
	if n.leaf || len(n.children) == 0 {
		return
	}

	o := g.orientationOf(id)
	length := r.Width
	if o == Vertical {
		length = r.Height
	}
	weights := make([]float64, len(n.children))
	mins := make([]int, len(n.children))
	maxs := make([]int, len(n.children))
	for i, c := range n.children {
		weights[i] = g.nodes[c].size
		mins[i], maxs[i] = g.bounds(c, o)
	}
	sizes := Distribute(length, weights, mins, maxs)

	offset := 0
	for i, c := range n.children {
		cr := r
		if o == Horizontal {
			cr.X = r.X + offset
			cr.Width = sizes[i]
		} else {
			cr.Y = r.Y + offset
			cr.Height = sizes[i]
		}
		offset += sizes[i]
		g.layoutNode(c, cr)
	}
}

// Distribute splits length among children in proportion to weights, clamping
// each to [mins[i], maxs[i]] and handing what clamped children gave up (or
// took) to the unclamped ones until no further clamping occurs. Each pass
// freezes only the children violating in the dominant direction: minimums
// when clamping adds more than it removes, maximums otherwise. The result
// always sums to length; when the constraints cannot all be met the last
// child absorbs the difference.
func Distribute(length int, weights []float64, mins, maxs []int) []int {
	n := len(weights)
	out := make([]int, n)
	if n == 0 {
		return out
	}
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := range weights {
		hi[i] = math.MaxInt32
		if mins != nil {
			lo[i] = float64(mins[i])
		}
		if maxs != nil && maxs[i] > 0 {
			hi[i] = float64(maxs[i])
		}
	}

	shares := make([]float64, n)
	fixed := make([]bool, n)
	remaining := float64(length)
	for {
		free, totalW := 0, 0.0
		for i := range weights {
			if !fixed[i] {
				free++
				totalW += math.Max(weights[i], 0)
			}
		}
		if free == 0 {
			break
		}
		violation := 0.0
		for i := range weights {
			if fixed[i] {
				continue
			}
			if totalW > 0 {
				shares[i] = remaining * math.Max(weights[i], 0) / totalW
			} else {
				shares[i] = remaining / float64(free)
			}
			violation += math.Min(math.Max(shares[i], lo[i]), hi[i]) - shares[i]
		}
		clamped := false
		for i := range weights {
			if fixed[i] {
				continue
			}
			under, over := shares[i] < lo[i], shares[i] > hi[i]
			switch {
			case under && violation >= 0:
				shares[i] = lo[i]
			case over && violation <= 0:
				shares[i] = hi[i]
			default:
				continue
			}
			fixed[i], clamped = true, true
			remaining -= shares[i]
		}
		if !clamped {
			break
		}
	}

	pos, acc := 0, 0.0
	for i := range shares {
		acc += shares[i]
		end := int(math.Round(acc))
		if i == n-1 {
			end = length
		}
		if end < pos {
			end = pos
		}
		out[i] = end - pos
		pos = end
	}
	return out
}

// Rect returns the rectangle of the leaf holding groupID.
func (g *Grid) Rect(groupID string) (geom.Rect, bool) {
	id, ok := g.leaves[groupID]
	if !ok {
		return geom.Rect{}, false
	}
	g.ensureLayout()
	return g.nodes[id].rect, true
}

// Rects returns the rectangle of every leaf keyed by group id.
func (g *Grid) Rects() map[string]geom.Rect {
	g.ensureLayout()
	out := make(map[string]geom.Rect, len(g.leaves))
	for group, id := range g.leaves {
		out[group] = g.nodes[id].rect
	}
	return out
}

// NodeInfo describes one node during Walk.
type NodeInfo struct {
	ID          NodeID
	Parent      NodeID
	Leaf        bool
	Group       string
	Orientation Orientation
	Depth       int
	Weight      float64
	Rect        geom.Rect
	Children    int
}

// Walk visits every node depth-first, parents before children, with
// up-to-date rectangles. Returning false from fn skips the node's children.
func (g *Grid) Walk(fn func(NodeInfo) bool) {
	g.ensureLayout()
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		n := g.nodes[id]
		o := g.orientation
		if depth%2 == 1 {
			o = o.Orthogonal()
		}
		info := NodeInfo{
			ID:          id,
			Parent:      n.parent,
			Leaf:        n.leaf,
			Group:       n.group,
			Orientation: o,
			Depth:       depth,
			Weight:      n.size,
			Rect:        n.rect,
			Children:    len(n.children),
		}
		if !fn(info) {
			return
		}
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	walk(g.root, 0)
}

// GroupAt returns the group whose rectangle contains p.
func (g *Grid) GroupAt(p geom.Point) (string, bool) {
	g.ensureLayout()
	id := g.root
	for {
		n := g.nodes[id]
		if !n.rect.Contains(p) {
			return "", false
		}
		if n.leaf {
			return n.group, true
		}
		next := NodeID(0)
		for _, c := range n.children {
			if g.nodes[c].rect.Contains(p) {
				next = c
				break
			}
		}
		if next == 0 {
			return "", false
		}
		id = next
	}
}

// Sash is the draggable boundary between children Index and Index+1 of a branch.
type Sash struct {
	Branch      NodeID
	Index       int
	Orientation Orientation
	Rect        geom.Rect
}

// Sashes returns every sash with its one-pixel-thick rectangle, which sits on
// the last column (or row) of the child before it.
func (g *Grid) Sashes() []Sash {
	var out []Sash
	g.Walk(func(info NodeInfo) bool {
		if info.Leaf || info.Children < 2 {
			return true
		}
		n := g.nodes[info.ID]
		for i := 0; i < len(n.children)-1; i++ {
			cr := g.nodes[n.children[i]].rect
			s := Sash{Branch: info.ID, Index: i, Orientation: info.Orientation}
			if info.Orientation == Horizontal {
				s.Rect = geom.Rect{X: cr.X + cr.Width - 1, Y: cr.Y, Width: 1, Height: cr.Height}
			} else {
				s.Rect = geom.Rect{X: cr.X, Y: cr.Y + cr.Height - 1, Width: cr.Width, Height: 1}
			}
			out = append(out, s)
		}
		return true
	})
	return out
}

// SashAt returns the sash under p, if any.
func (g *Grid) SashAt(p geom.Point) (Sash, bool) {
	for _, s := range g.Sashes() {
		if s.Rect.Contains(p) {
			return s, true
		}
	}
	return Sash{}, false
}

// ResizeSash moves the boundary between children index and index+1 of branch
// by delta pixels along the branch's axis. Only those two weights change and
// their sum is preserved; the move is clamped so neither child leaves its
// constraints. It returns the delta actually applied.
func (g *Grid) ResizeSash(branch NodeID, index, delta int) int {
	n, ok := g.nodes[branch]
	if !ok || n.leaf || index < 0 || index+1 >= len(n.children) {
		return 0
	}
	g.ensureLayout()
	o := g.orientationOf(branch)
	a, b := g.nodes[n.children[index]], g.nodes[n.children[index+1]]
	la, lb := a.rect.Width, b.rect.Width
	if o == Vertical {
		la, lb = a.rect.Height, b.rect.Height
	}
	mina, maxa := g.bounds(a.id, o)
	minb, maxb := g.bounds(b.id, o)

	lo := max(mina-la, lb-maxb)
	hi := min(maxa-la, lb-minb)
	if lo > hi {
		return 0
	}
	delta = min(max(delta, lo), hi)
	if delta == 0 || la+lb == 0 {
		return 0
	}

	sum := a.size + b.size
	if sum <= 0 {
		sum = float64(la + lb)
	}
	a.size = sum * float64(la+delta) / float64(la+lb)
	b.size = sum - a.size
	g.markDirty(branch)
	return delta
}

// Neighbor returns the group adjacent to groupID on side pos, preferring the
// candidate sharing the longest edge.
func (g *Grid) Neighbor(groupID string, pos geom.Position) (string, bool) {
	rects := g.Rects()
	from, ok := rects[groupID]
	if !ok || !pos.IsEdge() {
		return "", false
	}
	best, bestOverlap := "", 0
	for _, other := range g.Leaves() {
		if other == groupID {
			continue
		}
		r := rects[other]
		var touching bool
		var overlap int
		switch pos {
		case geom.Left:
			touching = r.X+r.Width == from.X
			overlap = min(r.Y+r.Height, from.Y+from.Height) - max(r.Y, from.Y)
		case geom.Right:
			touching = from.X+from.Width == r.X
			overlap = min(r.Y+r.Height, from.Y+from.Height) - max(r.Y, from.Y)
		case geom.Top:
			touching = r.Y+r.Height == from.Y
			overlap = min(r.X+r.Width, from.X+from.Width) - max(r.X, from.X)
		case geom.Bottom:
			touching = from.Y+from.Height == r.Y
			overlap = min(r.X+r.Width, from.X+from.Width) - max(r.X, from.X)
		}
		if touching && overlap > bestOverlap {
			best, bestOverlap = other, overlap
		}
	}
	return best, best != ""
}
