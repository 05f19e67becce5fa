package grid

import (
	"errors"
	"fmt"

	"workbench/internal/geom"
)

var (
	// ErrExists is returned when a group is already a leaf of the grid.
	ErrExists = errors.New("grid: group already present")
	// ErrNotFound is returned when a reference group is not a leaf of the grid.
	ErrNotFound = errors.New("grid: group not found")
	// ErrPosition is returned for a center position where an edge is required.
	ErrPosition = errors.New("grid: edge position required")
)

// InsertAtEdge adds a leaf for groupID along one edge of the whole grid.
// The new leaf takes the average weight of the row or column it joins; when
// the edge is orthogonal to the root, the root is wrapped (or, if it holds at
// most one leaf, re-oriented) first.
func (g *Grid) InsertAtEdge(groupID string, pos geom.Position) error {
	if g.Has(groupID) {
		return fmt.Errorf("%w: %s", ErrExists, groupID)
	}
	if pos == geom.Center {
		pos = geom.Right
	}
	if !pos.IsEdge() {
		return fmt.Errorf("%w: %q", ErrPosition, pos)
	}
	axis := axisOf(pos)
	root := g.nodes[g.root]

	if axis != g.orientation {
		if len(root.children) <= 1 {
			g.orientation = axis
		} else {
			// Old root becomes the first child of a new root with the other orientation.
			wrapper := g.newNode(false, "", root.size)
			root.size = 1
			root.parent = wrapper.id
			wrapper.children = []NodeID{root.id}
			g.root = wrapper.id
			g.orientation = axis
			root = wrapper
		}
	}

	weight := 1.0
	if len(root.children) > 0 {
		total := 0.0
		for _, c := range root.children {
			total += g.nodes[c].size
		}
		weight = total / float64(len(root.children))
	}
	leaf := g.newNode(true, groupID, weight)
	leaf.parent = root.id
	if pos.Before() {
		root.children = append([]NodeID{leaf.id}, root.children...)
	} else {
		root.children = append(root.children, leaf.id)
	}
	g.markDirty(root.id)
	return nil
}

// Insert adds a leaf for groupID next to the leaf holding ref, on side pos.
// The new leaf gets ratio of ref's previous weight and ref keeps the rest,
// so the total weight of the enclosing branch is unchanged.
func (g *Grid) Insert(groupID, ref string, pos geom.Position, ratio float64) error {
	if g.Has(groupID) {
		return fmt.Errorf("%w: %s", ErrExists, groupID)
	}
	refID, ok := g.leaves[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if !pos.IsEdge() {
		return fmt.Errorf("%w: %q", ErrPosition, pos)
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	axis := axisOf(pos)
	refNode := g.nodes[refID]
	parent := g.nodes[refNode.parent]

	if parent.id == g.root && len(parent.children) == 1 && axis != g.orientation {
		g.orientation = axis
	}

	if g.orientationOf(parent.id) == axis {
		leaf := g.newNode(true, groupID, refNode.size*ratio)
		leaf.parent = parent.id
		refNode.size *= 1 - ratio
		idx := g.indexOf(parent, refID)
		if !pos.Before() {
			idx++
		}
		parent.children = insertAt(parent.children, idx, leaf.id)
		g.markDirty(parent.id)
		return nil
	}

	// Replace ref with a branch holding ref and the new leaf.
	total := refNode.size
	branch := g.newNode(false, "", total)
	branch.parent = parent.id
	parent.children[g.indexOf(parent, refID)] = branch.id

	leaf := g.newNode(true, groupID, total*ratio)
	leaf.parent = branch.id
	refNode.parent = branch.id
	refNode.size = total * (1 - ratio)
	if pos.Before() {
		branch.children = []NodeID{leaf.id, refID}
	} else {
		branch.children = []NodeID{refID, leaf.id}
	}
	refNode.dirty = true
	g.markDirty(branch.id)
	return nil
}

// Remove deletes the leaf holding groupID and normalizes the tree: a non-root
// branch left with a single child is replaced by that child, and a root left
// with a single branch child hands the root over to it. Removing an unknown
// group is a no-op and returns false.
func (g *Grid) Remove(groupID string) bool {
	id, ok := g.leaves[groupID]
	if !ok {
		return false
	}
	leaf := g.nodes[id]
	parent := g.nodes[leaf.parent]
	parent.children = removeAt(parent.children, g.indexOf(parent, id))
	g.deleteNode(leaf)
	g.collapse(parent.id)
	return true
}

// collapse restores the minimal form around branch id after a child was removed.
func (g *Grid) collapse(id NodeID) {
	n := g.nodes[id]
	if id == g.root {
		if len(n.children) == 1 {
			child := g.nodes[n.children[0]]
			if !child.leaf {
				child.parent = 0
				child.size = n.size
				g.deleteNode(n)
				g.root = child.id
				g.orientation = g.orientation.Orthogonal()
				child.dirty = true
				return
			}
		}
		g.markDirty(id)
		return
	}
	if len(n.children) >= 2 {
		g.markDirty(id)
		return
	}

	grand := g.nodes[n.parent]
	idx := g.indexOf(grand, id)
	if len(n.children) == 0 {
		grand.children = removeAt(grand.children, idx)
		g.deleteNode(n)
		g.collapse(grand.id)
		return
	}

	child := g.nodes[n.children[0]]
	if child.leaf {
		child.parent = grand.id
		child.size = n.size
		child.dirty = true
		grand.children[idx] = child.id
		g.deleteNode(n)
		g.markDirty(grand.id)
		return
	}

	// child is a branch with grand's orientation: splice its children into grand.
	total := 0.0
	for _, c := range child.children {
		total += g.nodes[c].size
	}
	spliced := make([]NodeID, 0, len(child.children))
	for _, c := range child.children {
		gc := g.nodes[c]
		if total > 0 {
			gc.size = gc.size / total * n.size
		} else {
			gc.size = n.size / float64(len(child.children))
		}
		gc.parent = grand.id
		gc.dirty = true
		spliced = append(spliced, c)
	}
	next := make([]NodeID, 0, len(grand.children)-1+len(spliced))
	next = append(next, grand.children[:idx]...)
	next = append(next, spliced...)
	next = append(next, grand.children[idx+1:]...)
	grand.children = next
	g.deleteNode(child)
	g.deleteNode(n)
	g.markDirty(grand.id)
}

// Clear removes every node and leaves an empty root with orientation o.
func (g *Grid) Clear(o Orientation) {
	g.nodes = make(map[NodeID]*node)
	g.leaves = make(map[string]NodeID)
	g.orientation = o
	g.root = g.newNode(false, "", 1).id
}

func insertAt(s []NodeID, i int, v NodeID) []NodeID {
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt(s []NodeID, i int) []NodeID {
	if i < 0 {
		return s
	}
	return append(s[:i], s[i+1:]...)
}
