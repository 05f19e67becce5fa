package grid

import (
	"fmt"
	"math"
)

// Tree is a plain-data copy of the grid used by the serialization codec.
// A leaf has Leaf set and names its Group; a branch lists Children.
type Tree struct {
	Leaf     bool
	Group    string
	Size     float64
	Children []Tree
}

// Snapshot returns the grid as a Tree rooted at the root branch.
func (g *Grid) Snapshot() Tree {
	var walk func(id NodeID) Tree
	walk = func(id NodeID) Tree {
		n := g.nodes[id]
		if n.leaf {
			return Tree{Leaf: true, Group: n.group, Size: n.size}
		}
		t := Tree{Size: n.size, Children: make([]Tree, 0, len(n.children))}
		for _, c := range n.children {
			t.Children = append(t.Children, walk(c))
		}
		return t
	}
	return walk(g.root)
}

// Build replaces the grid contents with t. A leaf root is wrapped in a root
// branch; branches left empty or with a single child are normalized the same
// way Remove normalizes them. On error the grid is left unchanged.
func (g *Grid) Build(o Orientation, t Tree) error {
	seen := make(map[string]bool)
	if err := checkTree(t, seen); err != nil {
		return err
	}

	fresh := New(o, g.constraints)
	fresh.width, fresh.height = g.width, g.height
	fresh.next = g.next
	root := fresh.nodes[fresh.root]
	if t.Leaf {
		leaf := fresh.newNode(true, t.Group, t.Size)
		leaf.parent = root.id
		root.children = []NodeID{leaf.id}
	} else {
		root.size = t.Size
		for _, c := range t.Children {
			if id, ok := fresh.build(c, root.id); ok {
				root.children = append(root.children, id)
			}
		}
	}
	fresh.normalize(fresh.root)

	g.nodes = fresh.nodes
	g.leaves = fresh.leaves
	g.root = fresh.root
	g.next = fresh.next
	g.orientation = fresh.orientation
	return nil
}

func (g *Grid) build(t Tree, parent NodeID) (NodeID, bool) {
	if t.Leaf {
		n := g.newNode(true, t.Group, t.Size)
		n.parent = parent
		return n.id, true
	}
	n := g.newNode(false, "", t.Size)
	n.parent = parent
	for _, c := range t.Children {
		if id, ok := g.build(c, n.id); ok {
			n.children = append(n.children, id)
		}
	}
	return n.id, true
}

// normalize collapses degenerate branches below id, children first.
func (g *Grid) normalize(id NodeID) {
	n := g.nodes[id]
	if n == nil || n.leaf {
		return
	}
	for _, c := range append([]NodeID(nil), n.children...) {
		g.normalize(c)
	}
	if _, alive := g.nodes[id]; !alive {
		return
	}
	if id == g.root || len(n.children) < 2 {
		g.collapse(id)
	}
}

func checkTree(t Tree, seen map[string]bool) error {
	if math.IsNaN(t.Size) || math.IsInf(t.Size, 0) || t.Size < 0 {
		return fmt.Errorf("grid: invalid size %v", t.Size)
	}
	if t.Leaf {
		if t.Group == "" {
			return fmt.Errorf("grid: leaf without group")
		}
		if seen[t.Group] {
			return fmt.Errorf("%w: %s", ErrExists, t.Group)
		}
		seen[t.Group] = true
		return nil
	}
	for _, c := range t.Children {
		if err := checkTree(c, seen); err != nil {
			return err
		}
	}
	return nil
}
