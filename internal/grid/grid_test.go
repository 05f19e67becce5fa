package grid

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbench/internal/geom"
)

// requireNormal asserts the minimal normalized form: every non-root branch has
// at least two children and parent links agree with child lists.
func requireNormal(t *testing.T, g *Grid) {
	t.Helper()
	var walk func(id NodeID)
	walk = func(id NodeID) {
		n := g.nodes[id]
		require.NotNil(t, n, "node %d missing", id)
		if n.leaf {
			assert.Equal(t, id, g.leaves[n.group])
			return
		}
		if id != g.root {
			assert.GreaterOrEqual(t, len(n.children), 2, "branch %d has %d children", id, len(n.children))
		} else if len(n.children) == 1 {
			assert.True(t, g.nodes[n.children[0]].leaf, "root with a single branch child")
		}
		for _, c := range n.children {
			assert.Equal(t, id, g.nodes[c].parent)
			walk(c)
		}
	}
	walk(g.root)
}

func TestInsertAtEdge_EmptyGrid(t *testing.T) {
	g := New(Horizontal, nil)
	require.True(t, g.Empty())

	require.NoError(t, g.InsertAtEdge("1", geom.Right))
	assert.Equal(t, []string{"1"}, g.Leaves())
	assert.False(t, g.Empty())

	err := g.InsertAtEdge("1", geom.Right)
	assert.ErrorIs(t, err, ErrExists)
}

func TestInsert_RightEdgeHalvesReference(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("g", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))

	before, _ := g.Weight("g")
	require.NoError(t, g.Insert("new", "g", geom.Right, 0.5))

	assert.Equal(t, []string{"a", "g", "new", "b"}, g.Leaves())
	wg, _ := g.Weight("g")
	wn, _ := g.Weight("new")
	assert.InDelta(t, before/2, wg, 1e-9)
	assert.InDelta(t, before/2, wn, 1e-9)
	assert.Equal(t, Horizontal, g.Orientation())
	requireNormal(t, g)
}

func TestInsert_OrthogonalWrapsReference(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))

	require.NoError(t, g.Insert("c", "b", geom.Bottom, 0.5))

	snap := g.Snapshot()
	require.Len(t, snap.Children, 2)
	assert.True(t, snap.Children[0].Leaf)
	inner := snap.Children[1]
	require.False(t, inner.Leaf)
	require.Len(t, inner.Children, 2)
	assert.Equal(t, "b", inner.Children[0].Group)
	assert.Equal(t, "c", inner.Children[1].Group)
	assert.InDelta(t, 1.0, inner.Size, 1e-9)
	requireNormal(t, g)
}

func TestInsert_SingleLeafRootReorients(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))

	require.NoError(t, g.Insert("b", "a", geom.Top, 0.5))

	assert.Equal(t, Vertical, g.Orientation())
	assert.Equal(t, []string{"b", "a"}, g.Leaves())
	snap := g.Snapshot()
	assert.Len(t, snap.Children, 2, "no wrapper branch for a single-leaf root")
}

func TestInsert_Errors(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))

	assert.ErrorIs(t, g.Insert("b", "missing", geom.Left, 0.5), ErrNotFound)
	assert.ErrorIs(t, g.Insert("b", "a", geom.Center, 0.5), ErrPosition)
	assert.ErrorIs(t, g.Insert("a", "a", geom.Left, 0.5), ErrExists)
}

func TestInsertAtEdge_OrthogonalWrapsRoot(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))

	require.NoError(t, g.InsertAtEdge("c", geom.Bottom))

	assert.Equal(t, Vertical, g.Orientation())
	assert.Equal(t, []string{"a", "b", "c"}, g.Leaves())
	snap := g.Snapshot()
	require.Len(t, snap.Children, 2)
	assert.False(t, snap.Children[0].Leaf)
	assert.True(t, snap.Children[1].Leaf)
	requireNormal(t, g)
}

func TestRemove_PromotesSoleSibling(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	require.NoError(t, g.Insert("c", "b", geom.Bottom, 0.5))
	wBranch := g.Snapshot().Children[1].Size

	require.True(t, g.Remove("c"))

	snap := g.Snapshot()
	require.Len(t, snap.Children, 2)
	assert.True(t, snap.Children[1].Leaf)
	assert.Equal(t, "b", snap.Children[1].Group)
	assert.InDelta(t, wBranch, snap.Children[1].Size, 1e-9, "promoted leaf inherits the branch weight")
	requireNormal(t, g)

	assert.False(t, g.Remove("c"), "second remove is a no-op")
}

func TestRemove_SplicesGrandchildren(t *testing.T) {
	// root(H): [a, branch(V): [b, branch(H): [c, d]]]
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	require.NoError(t, g.Insert("c", "b", geom.Bottom, 0.5))
	require.NoError(t, g.Insert("d", "c", geom.Right, 0.5))

	require.True(t, g.Remove("b"))

	// the vertical branch collapses; c and d join the root row.
	assert.Equal(t, []string{"a", "c", "d"}, g.Leaves())
	snap := g.Snapshot()
	require.Len(t, snap.Children, 3)
	for _, c := range snap.Children {
		assert.True(t, c.Leaf)
	}
	wc, _ := g.Weight("c")
	wd, _ := g.Weight("d")
	assert.InDelta(t, 1.0, wc+wd, 1e-9)
	requireNormal(t, g)
}

func TestRemove_RootHandsOverToBranch(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	require.NoError(t, g.Insert("c", "b", geom.Bottom, 0.5))

	require.True(t, g.Remove("a"))

	assert.Equal(t, Vertical, g.Orientation())
	assert.Equal(t, []string{"b", "c"}, g.Leaves())
	requireNormal(t, g)
}

func TestRemove_LastLeafLeavesEmptyGrid(t *testing.T) {
	g := New(Vertical, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Bottom))
	require.True(t, g.Remove("a"))
	assert.True(t, g.Empty())
	assert.Empty(t, g.Leaves())
	requireNormal(t, g)
}

func TestRemove_CollapseIsIdempotent(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("g0", geom.Right))
	sides := []geom.Position{geom.Right, geom.Bottom, geom.Left, geom.Top}
	for i := 1; i < 24; i++ {
		ref := fmt.Sprintf("g%d", (i*7+3)%i)
		require.NoError(t, g.Insert(fmt.Sprintf("g%d", i), ref, sides[i%len(sides)], 0.5))
		requireNormal(t, g)
	}
	for _, id := range []int{3, 0, 17, 5, 22, 9, 1, 14, 11, 2, 20, 8, 6, 23, 4, 19, 7, 12, 15, 10, 13, 16, 18, 21} {
		require.True(t, g.Remove(fmt.Sprintf("g%d", id)))
		requireNormal(t, g)
	}
	assert.True(t, g.Empty())
}

func TestLayout_TilesContainer(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	require.NoError(t, g.Insert("c", "b", geom.Bottom, 0.5))
	g.Layout(101, 40)

	rects := g.Rects()
	assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 51, Height: 40}, rects["a"])
	assert.Equal(t, geom.Rect{X: 51, Y: 0, Width: 50, Height: 20}, rects["b"])
	assert.Equal(t, geom.Rect{X: 51, Y: 20, Width: 50, Height: 20}, rects["c"])

	area := 0
	for _, r := range rects {
		area += r.Width * r.Height
	}
	assert.Equal(t, 101*40, area)
}

func TestLayout_HonorsConstraints(t *testing.T) {
	src := func(group string) Constraints {
		switch group {
		case "a":
			return Constraints{MinWidth: 70}
		case "b":
			return Constraints{MaxWidth: 10}
		}
		return Constraints{}
	}
	g := New(Horizontal, src)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.InsertAtEdge(id, geom.Right))
	}
	g.Layout(120, 10)

	rects := g.Rects()
	assert.Equal(t, 70, rects["a"].Width)
	assert.Equal(t, 10, rects["b"].Width)
	assert.Equal(t, 40, rects["c"].Width)
}

func TestLayout_OnlyDirtySubtreeReflows(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	require.NoError(t, g.Insert("a2", "a", geom.Bottom, 0.5))
	require.NoError(t, g.Insert("b2", "b", geom.Bottom, 0.5))
	g.Layout(80, 20)
	g.Rects()

	require.NoError(t, g.Insert("b3", "b2", geom.Bottom, 0.5))

	aBranch := g.nodes[g.nodes[g.leaves["a"]].parent]
	bBranch := g.nodes[g.nodes[g.leaves["b"]].parent]
	assert.False(t, aBranch.dirty, "untouched subtree stays clean")
	assert.True(t, bBranch.dirty)
	assert.True(t, g.nodes[g.root].dirty)

	g.Rects()
	assert.False(t, bBranch.dirty)
}

func TestResizeSash_ConservesPairWeight(t *testing.T) {
	g := New(Horizontal, nil)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, g.InsertAtEdge(id, geom.Right))
	}
	g.Layout(90, 10)
	sashes := g.Sashes()
	require.Len(t, sashes, 2)

	wa0, _ := g.Weight("a")
	wb0, _ := g.Weight("b")
	wc0, _ := g.Weight("c")

	applied := g.ResizeSash(sashes[0].Branch, 0, 12)
	assert.Equal(t, 12, applied)

	wa, _ := g.Weight("a")
	wb, _ := g.Weight("b")
	wc, _ := g.Weight("c")
	assert.InDelta(t, wa0+wb0, wa+wb, 1e-9)
	assert.Equal(t, wc0, wc)

	rects := g.Rects()
	assert.Equal(t, 42, rects["a"].Width)
	assert.Equal(t, 18, rects["b"].Width)
	assert.Equal(t, 30, rects["c"].Width)
}

func TestResizeSash_ClampsToConstraints(t *testing.T) {
	src := func(group string) Constraints {
		if group == "b" {
			return Constraints{MinWidth: 20}
		}
		return Constraints{}
	}
	g := New(Horizontal, src)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	g.Layout(60, 10)
	s := g.Sashes()[0]

	applied := g.ResizeSash(s.Branch, s.Index, 100)
	assert.Equal(t, 10, applied)
	assert.Equal(t, 20, g.Rects()["b"].Width)

	assert.Zero(t, g.ResizeSash(s.Branch, 5, 1), "out of range sash")
}

func TestResizeSash_CollapseAndReopen(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	g.Layout(60, 10)
	s := g.Sashes()[0]

	assert.Equal(t, -30, g.ResizeSash(s.Branch, s.Index, -1000))
	wa, _ := g.Weight("a")
	assert.Zero(t, wa)
	assert.Equal(t, 0, g.Rects()["a"].Width)
	assert.Equal(t, 60, g.Rects()["b"].Width)

	assert.Equal(t, 10, g.ResizeSash(s.Branch, s.Index, 10))
	assert.Equal(t, 10, g.Rects()["a"].Width)
}

func TestGroupAtAndNeighbor(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	require.NoError(t, g.Insert("c", "b", geom.Bottom, 0.5))
	g.Layout(100, 40)

	got, ok := g.GroupAt(geom.Point{X: 75, Y: 30})
	require.True(t, ok)
	assert.Equal(t, "c", got)
	_, ok = g.GroupAt(geom.Point{X: 100, Y: 0})
	assert.False(t, ok)

	n, ok := g.Neighbor("c", geom.Top)
	require.True(t, ok)
	assert.Equal(t, "b", n)
	n, ok = g.Neighbor("c", geom.Left)
	require.True(t, ok)
	assert.Equal(t, "a", n)
	_, ok = g.Neighbor("a", geom.Left)
	assert.False(t, ok)
}

func TestSnapshotBuild_RoundTrip(t *testing.T) {
	g := New(Horizontal, nil)
	require.NoError(t, g.InsertAtEdge("a", geom.Right))
	require.NoError(t, g.InsertAtEdge("b", geom.Right))
	require.NoError(t, g.Insert("c", "b", geom.Bottom, 0.25))
	snap := g.Snapshot()

	h := New(Vertical, nil)
	require.NoError(t, h.Build(g.Orientation(), snap))
	assert.Equal(t, snap, h.Snapshot())
	assert.Equal(t, g.Orientation(), h.Orientation())
}

func TestBuild_NormalizesAndValidates(t *testing.T) {
	g := New(Horizontal, nil)
	leafRoot := Tree{Leaf: true, Group: "x", Size: 3}
	require.NoError(t, g.Build(Vertical, leafRoot))
	assert.Equal(t, []string{"x"}, g.Leaves())
	assert.Equal(t, Vertical, g.Orientation())

	degenerate := Tree{Size: 1, Children: []Tree{
		{Size: 1, Children: []Tree{{Leaf: true, Group: "p", Size: 1}}},
		{Leaf: true, Group: "q", Size: 1},
	}}
	require.NoError(t, g.Build(Horizontal, degenerate))
	requireNormal(t, g)
	assert.Equal(t, []string{"p", "q"}, g.Leaves())

	dup := Tree{Size: 1, Children: []Tree{{Leaf: true, Group: "p", Size: 1}, {Leaf: true, Group: "p", Size: 1}}}
	assert.Error(t, g.Build(Horizontal, dup))
	assert.Equal(t, []string{"p", "q"}, g.Leaves(), "failed build leaves grid untouched")
}

func TestOrientationText(t *testing.T) {
	var o Orientation
	require.NoError(t, o.UnmarshalText([]byte("vertical")))
	assert.Equal(t, Vertical, o)
	b, err := Horizontal.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "HORIZONTAL", string(b))
	assert.Error(t, o.UnmarshalText([]byte("diagonal")))
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		weights []float64
		mins    []int
		maxs    []int
		want    []int
	}{
		{name: "even", length: 9, weights: []float64{1, 1, 1}, want: []int{3, 3, 3}},
		{name: "cumulative rounding", length: 10, weights: []float64{1, 1, 1}, want: []int{3, 4, 3}},
		{name: "proportional", length: 100, weights: []float64{3, 1}, want: []int{75, 25}},
		{name: "zero weights share evenly", length: 8, weights: []float64{0, 0}, want: []int{4, 4}},
		{name: "min redistributes", length: 100, weights: []float64{1, 1}, mins: []int{80, 0}, want: []int{80, 20}},
		{name: "max redistributes", length: 100, weights: []float64{1, 1, 1}, maxs: []int{10, 0, 0}, want: []int{10, 45, 45}},
		{name: "max surplus reaches a min-clamped sibling", length: 100, weights: []float64{1, 1}, mins: []int{60, 0}, maxs: []int{0, 10}, want: []int{90, 10}},
		{name: "min deficit taken from a max-bound sibling", length: 100, weights: []float64{1, 1}, mins: []int{0, 90}, maxs: []int{20, 0}, want: []int{10, 90}},
		{name: "zero weight collapses", length: 50, weights: []float64{0, 2}, want: []int{0, 50}},
		{name: "unsatisfiable mins", length: 10, weights: []float64{1, 1}, mins: []int{8, 8}, want: []int{8, 2}},
		{name: "empty", length: 10, weights: nil, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distribute(tt.length, tt.weights, tt.mins, tt.maxs)
			assert.Equal(t, tt.want, got)
			if len(got) > 0 {
				sum := 0
				for _, v := range got {
					sum += v
				}
				assert.Equal(t, tt.length, sum)
			}
		})
	}
}
