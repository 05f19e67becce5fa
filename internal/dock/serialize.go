package dock

import (
	"maps"
	"strconv"

	"workbench/internal/errors"
	"workbench/internal/geom"
	"workbench/internal/grid"
	"workbench/internal/layout"
)

// ToJSON captures the whole workbench as a SerializedLayout. The result is
// deterministic: equal engine states produce equal documents.
func (e *Engine) ToJSON() *layout.Layout {
	w, h := e.grid.Size()
	doc := &layout.Layout{
		Grid: layout.Grid{
			Root:        e.nodeOf(e.grid.Snapshot()),
			Width:       w,
			Height:      h,
			Orientation: e.grid.Orientation(),
		},
		Panels:      make(map[string]layout.Panel, len(e.panels)),
		ActiveGroup: e.activeGroup,
	}
	for id, p := range e.panels {
		doc.Panels[id] = layout.Panel{
			ID:               p.id,
			ContentComponent: p.component,
			TabComponent:     p.tabComponent,
			Title:            p.title,
			Renderer:         p.renderer,
			Params:           maps.Clone(p.params),
			MinimumWidth:     p.minWidth,
			MinimumHeight:    p.minHeight,
			MaximumWidth:     p.maxWidth,
			MaximumHeight:    p.maxHeight,
		}
	}
	for _, id := range e.floating {
		g := e.groups[id]
		doc.FloatingGroups = append(doc.FloatingGroups, layout.FloatingGroup{
			Data:     groupDoc(g),
			Position: boxDoc(g.box),
		})
	}
	for _, id := range e.popouts {
		g := e.groups[id]
		doc.PopoutGroups = append(doc.PopoutGroups, layout.PopoutGroup{
			Data:               groupDoc(g),
			GridReferenceGroup: g.reference,
			Position:           boxDoc(g.box),
			URL:                g.url,
		})
	}
	return doc
}

func (e *Engine) nodeOf(t grid.Tree) layout.Node {
	if t.Leaf {
		gd := groupDoc(e.groups[t.Group])
		return layout.Node{Type: layout.LeafNode, Size: t.Size, Group: &gd}
	}
	n := layout.Node{Type: layout.BranchNode, Size: t.Size, Children: make([]layout.Node, 0, len(t.Children))}
	for _, c := range t.Children {
		n.Children = append(n.Children, e.nodeOf(c))
	}
	return n
}

func groupDoc(g *groupState) layout.Group {
	return layout.Group{
		Views:      append([]string{}, g.panels...),
		ActiveView: g.active,
		ID:         g.id,
		Locked:     g.locked,
		HideHeader: g.hideHeader,
	}
}

func boxDoc(r geom.Rect) layout.Box {
	return layout.Box{Top: r.Y, Left: r.X, Width: r.Width, Height: r.Height}
}

func rectOf(b layout.Box) geom.Rect {
	return geom.Rect{X: b.Left, Y: b.Top, Width: b.Width, Height: b.Height}
}

// FromJSON replaces the whole workbench with doc. The document is validated
// first; an invalid document returns an error and leaves the engine
// untouched. Groups without an id are given fresh ones. Listeners see the
// removal of the old state, the additions of the new one and a single layout
// event.
//
// A panel whose content fails to mount does not abort the load: the layout
// is restored and the first *MountError is returned.
func (e *Engine) FromJSON(doc *layout.Layout) error {
	const op = errors.Op("dock.FromJSON")
	s := e.span(string(op))
	var err error
	defer func() { endSpan(s, err) }()

	if vErr := layout.Validate(doc); vErr != nil {
		err = errors.LayoutInvalid(op, vErr)
		return err
	}

	ids := newIDAssigner(doc)
	tree := ids.root
	if bErr := grid.New(doc.Grid.Orientation, nil).Build(doc.Grid.Orientation, tree); bErr != nil {
		err = errors.LayoutInvalid(op, bErr)
		return err
	}

	defer e.flush()
	e.teardown()
	e.nextGroup = ids.maxNumeric
	if bErr := e.grid.Build(doc.Grid.Orientation, tree); bErr != nil {
		err = errors.LayoutInvalid(op, bErr)
		return err
	}
	if w, h := e.grid.Size(); w == 0 && h == 0 {
		e.grid.Layout(doc.Grid.Width, doc.Grid.Height)
	}

	for _, leaf := range ids.grid {
		e.restoreGroup(doc, leaf.group, leaf.id, LocationGrid)
	}
	for i, f := range doc.FloatingGroups {
		g := e.restoreGroup(doc, f.Data, ids.floating[i], LocationFloating)
		g.box = rectOf(f.Position)
		e.floating = append(e.floating, g.id)
	}
	for i, p := range doc.PopoutGroups {
		id := ids.popout[i]
		box := rectOf(p.Position)
		windowID, wErr := e.openWindow(id, id, box)
		if wErr != nil {
			// The window cannot be restored; keep the panels in the grid.
			e.log.Warn("reopening popout failed, docking in grid", "op", string(op), "group", id, "error", wErr)
			g := e.restoreGroup(doc, p.Data, id, LocationGrid)
			e.place(g, placement{edge: true, side: geom.Right})
			continue
		}
		g := e.restoreGroup(doc, p.Data, id, LocationPopout)
		e.place(g, placement{popout: &popoutInfo{
			box:       box,
			window:    windowID,
			url:       p.URL,
			reference: p.GridReferenceGroup,
		}})
	}

	// The active group is taken as written, absent included; the recency
	// order used for fallbacks follows document order.
	e.activeGroup = ""
	e.mru = e.mru[:0]
	for _, g := range e.orderedGroups() {
		e.mru = append(e.mru, g.id)
	}
	e.setActiveGroup(doc.ActiveGroup)
	e.log.Info("layout restored", "op", string(op), "groups", len(e.groups), "panels", len(e.panels))

	if mErr := e.syncMounts(); mErr != nil {
		err = errors.E(op, errors.KindMount, mErr)
	}
	e.changed()
	return err
}

// restoreGroup creates a group and its panels from the document. Grid groups
// are already part of the rebuilt grid.
func (e *Engine) restoreGroup(doc *layout.Layout, gd layout.Group, id string, loc Location) *groupState {
	g := &groupState{
		id:         id,
		active:     gd.ActiveView,
		locked:     gd.Locked,
		hideHeader: gd.HideHeader,
		location:   loc,
	}
	e.groups[id] = g
	ev := GroupEvent{Group: id, Location: loc}
	e.queue(func() { e.addGroup.Emit(ev) })

	for _, pid := range gd.Views {
		pd := doc.Panels[pid]
		renderer := pd.Renderer
		if renderer == "" {
			renderer = e.opts.DefaultRenderer
		}
		p := &panelState{
			id:           pid,
			title:        pd.Title,
			component:    pd.ContentComponent,
			tabComponent: pd.TabComponent,
			params:       maps.Clone(pd.Params),
			renderer:     renderer,
			minWidth:     pd.MinimumWidth,
			minHeight:    pd.MinimumHeight,
			maxWidth:     pd.MaximumWidth,
			maxHeight:    pd.MaximumHeight,
			group:        id,
		}
		e.newNodes(p)
		e.panels[pid] = p
		g.panels = append(g.panels, pid)
		pev := PanelEvent{Panel: pid, Group: id}
		e.queue(func() { e.addPanel.Emit(pev) })
	}
	if g.active == "" && len(g.panels) > 0 {
		g.active = g.panels[0]
	}
	return g
}

// idAssigner gives groups without an id a fresh numeric one that does not
// collide with any id in the document.
type idAssigner struct {
	used       map[string]bool
	maxNumeric int
	root       grid.Tree
	grid       []leafRef
	floating   []string
	popout     []string
}

type leafRef struct {
	id    string
	group layout.Group
}

func newIDAssigner(doc *layout.Layout) *idAssigner {
	a := &idAssigner{used: make(map[string]bool)}
	for _, g := range doc.Groups() {
		if g.ID == "" {
			continue
		}
		a.used[g.ID] = true
		if n, err := strconv.Atoi(g.ID); err == nil && n > a.maxNumeric {
			a.maxNumeric = n
		}
	}
	if doc.Grid.Root.Type != "" {
		a.root = a.tree(doc.Grid.Root)
	}
	for _, f := range doc.FloatingGroups {
		a.floating = append(a.floating, a.idFor(f.Data.ID))
	}
	for _, p := range doc.PopoutGroups {
		a.popout = append(a.popout, a.idFor(p.Data.ID))
	}
	return a
}

func (a *idAssigner) idFor(id string) string {
	if id != "" {
		return id
	}
	for {
		a.maxNumeric++
		id = strconv.Itoa(a.maxNumeric)
		if !a.used[id] {
			a.used[id] = true
			return id
		}
	}
}

// tree converts a document node to a grid tree, recording grid leaves in
// depth-first order. Sizes are kept as written, zero included.
func (a *idAssigner) tree(n layout.Node) grid.Tree {
	size := n.Size
	if n.Type == layout.LeafNode {
		id := a.idFor(n.Group.ID)
		a.grid = append(a.grid, leafRef{id: id, group: *n.Group})
		return grid.Tree{Leaf: true, Group: id, Size: size}
	}
	t := grid.Tree{Size: size}
	for _, c := range n.Children {
		t.Children = append(t.Children, a.tree(c))
	}
	return t
}
