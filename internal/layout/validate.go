package layout

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Invariant names reported by Validate.
const (
	InvUniqueGroup     = "unique-group-id"
	InvPanelID         = "panel-id"
	InvPanelDefined    = "panel-defined"
	InvPanelIDMatch    = "panel-id-match"
	InvSingleOwner     = "panel-single-owner"
	InvPanelReferenced = "panel-referenced"
	InvActiveView      = "active-view-member"
	InvActiveGroup     = "active-group-exists"
	InvPopoutReference = "popout-reference-group"
	InvRenderer        = "renderer"
	InvNodeSize        = "node-size"
	InvNodeType        = "node-type"
	InvConstraints     = "panel-constraints"
	InvPosition        = "detached-position"
)

// InvariantError identifies the first invariant a document violates.
type InvariantError struct {
	Invariant string
	ID        string
	Path      string
}

func (e *InvariantError) Error() string {
	var b strings.Builder
	b.WriteString("layout: invariant ")
	b.WriteString(e.Invariant)
	b.WriteString(" violated")
	if e.ID != "" {
		fmt.Fprintf(&b, " by %q", e.ID)
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	return b.String()
}

type validator struct {
	doc      *Layout
	groups   map[string]bool
	gridIDs  map[string]bool
	owned    map[string]bool
	firstErr *InvariantError
}

func (v *validator) fail(invariant, id, path string) {
	if v.firstErr == nil {
		v.firstErr = &InvariantError{Invariant: invariant, ID: id, Path: path}
	}
}

// Validate checks every structural invariant of l and returns the first
// violation as an *InvariantError, or nil. It never mutates l.
//
// Groups without an id are accepted; the engine assigns one when it builds
// the layout.
func Validate(l *Layout) error {
	if l == nil {
		return &InvariantError{Invariant: InvNodeType, Path: "$"}
	}
	v := &validator{
		doc:     l,
		groups:  make(map[string]bool),
		gridIDs: make(map[string]bool),
		owned:   make(map[string]bool),
	}

	// A missing root is an empty grid.
	if l.Grid.Root.Type != "" {
		v.node(l.Grid.Root, "grid.root", true)
	}
	for i, f := range l.FloatingGroups {
		path := fmt.Sprintf("floatingGroups[%d]", i)
		v.group(f.Data, path+".data")
		v.box(f.Data.ID, f.Position, path+".position")
	}
	for i, p := range l.PopoutGroups {
		path := fmt.Sprintf("popoutGroups[%d]", i)
		v.group(p.Data, path+".data")
		v.box(p.Data.ID, p.Position, path+".position")
		if p.GridReferenceGroup != "" && !v.gridIDs[p.GridReferenceGroup] {
			v.fail(InvPopoutReference, p.GridReferenceGroup, path+".gridReferenceGroup")
		}
	}
	v.panels()
	if l.ActiveGroup != "" && !v.groups[l.ActiveGroup] {
		v.fail(InvActiveGroup, l.ActiveGroup, "activeGroup")
	}

	if v.firstErr != nil {
		return v.firstErr
	}
	return nil
}

func (v *validator) node(n Node, path string, inGrid bool) {
	if math.IsNaN(n.Size) || math.IsInf(n.Size, 0) || n.Size < 0 {
		v.fail(InvNodeSize, "", path+".size")
	}
	switch n.Type {
	case LeafNode:
		if n.Group == nil {
			v.fail(InvNodeType, "", path+".data")
			return
		}
		v.group(*n.Group, path+".data")
		if inGrid && n.Group.ID != "" {
			v.gridIDs[n.Group.ID] = true
		}
	case BranchNode:
		for i, c := range n.Children {
			v.node(c, fmt.Sprintf("%s.data[%d]", path, i), inGrid)
		}
	default:
		v.fail(InvNodeType, string(n.Type), path+".type")
	}
}

func (v *validator) group(g Group, path string) {
	if g.ID != "" {
		if v.groups[g.ID] {
			v.fail(InvUniqueGroup, g.ID, path+".id")
		}
		v.groups[g.ID] = true
	}
	for i, id := range g.Views {
		vpath := fmt.Sprintf("%s.views[%d]", path, i)
		if id == "" {
			v.fail(InvPanelID, "", vpath)
			continue
		}
		if _, ok := v.doc.Panels[id]; !ok {
			v.fail(InvPanelDefined, id, vpath)
		}
		if v.owned[id] {
			v.fail(InvSingleOwner, id, vpath)
		}
		v.owned[id] = true
	}
	if g.ActiveView != "" && !slices.Contains(g.Views, g.ActiveView) {
		v.fail(InvActiveView, g.ActiveView, path+".activeView")
	}
}

func (v *validator) box(id string, b Box, path string) {
	if b.Width < 0 || b.Height < 0 {
		v.fail(InvPosition, id, path)
	}
}

func (v *validator) panels() {
	keys := make([]string, 0, len(v.doc.Panels))
	for k := range v.doc.Panels {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p := v.doc.Panels[k]
		path := "panels." + k
		switch {
		case p.ID != k:
			v.fail(InvPanelIDMatch, k, path+".id")
		case !p.Renderer.Valid():
			v.fail(InvRenderer, k, path+".renderer")
		case badRange(p.MinimumWidth, p.MaximumWidth) || badRange(p.MinimumHeight, p.MaximumHeight):
			v.fail(InvConstraints, k, path)
		case !v.owned[k]:
			v.fail(InvPanelReferenced, k, path)
		}
	}
}

func badRange(lo, hi int) bool {
	return lo < 0 || hi < 0 || (hi > 0 && lo > hi)
}
