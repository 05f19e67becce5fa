package dock

import (
	"slices"

	"workbench/internal/errors"
	"workbench/internal/geom"
	"workbench/internal/grid"
)

// Location says where a group lives.
type Location int

const (
	LocationGrid Location = iota
	LocationFloating
	LocationPopout
)

func (l Location) String() string {
	switch l {
	case LocationFloating:
		return "floating"
	case LocationPopout:
		return "popout"
	default:
		return "grid"
	}
}

type groupState struct {
	id         string
	panels     []string
	active     string
	locked     bool
	hideHeader bool
	location   Location

	// detached groups only
	box       geom.Rect
	reference string // popout: grid group to re-dock beside
	url       string
	window    string
}

func (g *groupState) indexOf(panelID string) int {
	return slices.Index(g.panels, panelID)
}

// Group is a handle to a tab group. It resolves through the engine on every
// call, so a handle to a removed group is inert.
type Group struct {
	e  *Engine
	id string
}

func (e *Engine) groupHandle(id string) *Group { return &Group{e: e, id: id} }

func (g *Group) state() *groupState {
	if g == nil || g.e == nil {
		return nil
	}
	return g.e.groups[g.id]
}

// ID returns the group id.
func (g *Group) ID() string { return g.id }

// Exists reports whether the group is still part of the layout.
func (g *Group) Exists() bool { return g.state() != nil }

// PanelIDs returns the group's panel ids in tab order.
func (g *Group) PanelIDs() []string {
	s := g.state()
	if s == nil {
		return nil
	}
	return slices.Clone(s.panels)
}

// Panels returns handles for the group's panels in tab order.
func (g *Group) Panels() []*Panel {
	var out []*Panel
	for _, id := range g.PanelIDs() {
		out = append(out, g.e.panelHandle(id))
	}
	return out
}

// ActivePanelID returns the id of the visible tab, or "".
func (g *Group) ActivePanelID() string {
	if s := g.state(); s != nil {
		return s.active
	}
	return ""
}

// SetActivePanel makes panelID the visible tab and the group active.
func (g *Group) SetActivePanel(panelID string) bool {
	s := g.state()
	if s == nil || s.indexOf(panelID) < 0 {
		return false
	}
	defer g.e.flush()
	s.active = panelID
	g.e.setActiveGroup(s.id)
	if err := g.e.syncMounts(); err != nil {
		g.e.log.Warn("mount failed", "op", "SetActivePanel", "panel", panelID, "error", err)
	}
	g.e.changed()
	return true
}

// MovePanel moves panelID to index within this group. Out of range indexes
// clamp to the ends.
func (g *Group) MovePanel(panelID string, index int) bool {
	s := g.state()
	if s == nil {
		return false
	}
	from := s.indexOf(panelID)
	if from < 0 {
		return false
	}
	defer g.e.flush()
	g.e.reorder(s, from, index)
	return true
}

func (e *Engine) reorder(g *groupState, from, index int) {
	index = max(0, min(index, len(g.panels)-1))
	if index == from {
		return
	}
	id := g.panels[from]
	g.panels = slices.Delete(g.panels, from, from+1)
	g.panels = slices.Insert(g.panels, index, id)
	e.log.Debug("tab reordered", "op", "MovePanel", "group", g.id, "panel", id, "index", index)
	e.changed()
}

// Locked reports whether the group refuses drops into it.
func (g *Group) Locked() bool {
	s := g.state()
	return s != nil && s.locked
}

// SetLocked sets the lock flag.
func (g *Group) SetLocked(locked bool) {
	s := g.state()
	if s == nil || s.locked == locked {
		return
	}
	defer g.e.flush()
	s.locked = locked
	g.e.changed()
}

// HideHeader reports whether the tab strip is hidden.
func (g *Group) HideHeader() bool {
	s := g.state()
	return s != nil && s.hideHeader
}

// SetHideHeader hides or shows the tab strip.
func (g *Group) SetHideHeader(hide bool) {
	s := g.state()
	if s == nil || s.hideHeader == hide {
		return
	}
	defer g.e.flush()
	s.hideHeader = hide
	if s.location == LocationGrid {
		g.e.grid.Invalidate(s.id)
	}
	g.e.syncNodes()
	g.e.changed()
}

// Location returns where the group lives.
func (g *Group) Location() Location {
	if s := g.state(); s != nil {
		return s.location
	}
	return LocationGrid
}

// Rect returns the group's rectangle on its surface.
func (g *Group) Rect() geom.Rect {
	r, _ := g.e.GroupRect(g.id)
	return r
}

// Window returns the popout window id, or "".
func (g *Group) Window() string {
	if s := g.state(); s != nil {
		return s.window
	}
	return ""
}

// Close removes the group and all of its panels.
func (g *Group) Close() {
	g.e.RemoveGroup(g.id)
}

// IsActive reports whether this is the active group.
func (g *Group) IsActive() bool { return g.e.activeGroup == g.id && g.state() != nil }

// AddGroupOptions place a new empty group.
type AddGroupOptions struct {
	ID       string
	Position *Position
	Floating *geom.Rect
}

// AddGroup creates an empty group, usable as a drop target. Without a
// position it is added at the right edge of the grid.
func (e *Engine) AddGroup(opts AddGroupOptions) (*Group, error) {
	const op = errors.Op("dock.AddGroup")
	s := e.span(string(op), groupAttr(opts.ID))
	var err error
	defer func() { endSpan(s, err) }()
	defer e.flush()

	if opts.ID != "" {
		if _, exists := e.groups[opts.ID]; exists {
			err = errors.E(op, errors.KindInvalid, "group "+opts.ID+" already exists")
			return nil, err
		}
	}
	var pl placement
	if opts.Floating != nil {
		pl = placement{floating: opts.Floating}
	} else {
		pos := opts.Position
		if pos == nil {
			pos = &Position{Direction: geom.Right}
		}
		pl, err = e.resolve(op, pos)
		if err != nil {
			return nil, err
		}
		if pl.merge != "" {
			// A group cannot be merged into another; split beside it instead.
			if e.groups[pl.merge].location == LocationGrid {
				pl = placement{splitRef: pl.merge, side: geom.Right}
			} else {
				pl = placement{edge: true, side: geom.Right}
			}
		}
	}
	id := opts.ID
	if id == "" {
		id = e.newGroupID()
	}
	g := e.createGroup(id, pl)
	e.setActiveGroup(g.id)
	e.log.Debug("group added", "op", "AddGroup", "group", g.id, "location", g.location.String())
	e.changed()
	return e.groupHandle(g.id), nil
}

// RemoveGroup removes a group and all of its panels. Unknown ids are a no-op.
func (e *Engine) RemoveGroup(id string) bool {
	g := e.groups[id]
	if g == nil {
		return false
	}
	s := e.span("dock.RemoveGroup", groupAttr(id))
	defer endSpan(s, nil)
	defer e.flush()
	e.removeGroupAndPanels(g)
	if err := e.syncMounts(); err != nil {
		e.log.Warn("mount failed", "op", "RemoveGroup", "error", err)
	}
	e.changed()
	return true
}

func (e *Engine) removeGroupAndPanels(g *groupState) {
	for _, pid := range slices.Clone(g.panels) {
		e.deletePanel(pid)
	}
	if e.groups[g.id] != nil {
		e.deleteGroup(g)
	}
}

// GetGroup returns a handle for id, or nil.
func (e *Engine) GetGroup(id string) *Group {
	if e.groups[id] == nil {
		return nil
	}
	return e.groupHandle(id)
}

// Groups returns every group: grid groups in depth-first order, then floating
// and popout groups in creation order.
func (e *Engine) Groups() []*Group {
	var out []*Group
	for _, g := range e.orderedGroups() {
		out = append(out, e.groupHandle(g.id))
	}
	return out
}

// ActiveGroup returns the active group, or nil.
func (e *Engine) ActiveGroup() *Group {
	return e.GetGroup(e.activeGroup)
}

// SetActiveGroup activates id.
func (e *Engine) SetActiveGroup(id string) bool {
	if e.groups[id] == nil {
		return false
	}
	defer e.flush()
	if e.activeGroup != id {
		e.setActiveGroup(id)
		e.changed()
	}
	return true
}

func (e *Engine) orderedGroups() []*groupState {
	out := make([]*groupState, 0, len(e.groups))
	for _, id := range e.grid.Leaves() {
		out = append(out, e.groups[id])
	}
	for _, id := range e.floating {
		out = append(out, e.groups[id])
	}
	for _, id := range e.popouts {
		out = append(out, e.groups[id])
	}
	return out
}

func (e *Engine) setActiveGroup(id string) {
	if id == "" || e.groups[id] == nil {
		return
	}
	e.activeGroup = id
	if i := slices.Index(e.mru, id); i >= 0 {
		e.mru = slices.Delete(e.mru, i, i+1)
	}
	e.mru = slices.Insert(e.mru, 0, id)
}

// placement is a resolved position directive.
type placement struct {
	merge    string        // existing group to add to
	index    int           // tab index for merge; -1 appends
	splitRef string        // grid group to split beside
	side     geom.Position // side for splitRef or window edge
	edge     bool          // window edge of the grid
	floating *geom.Rect
	popout   *popoutInfo
	id       string // id for a group created at this placement
}

type popoutInfo struct {
	box       geom.Rect
	window    string
	url       string
	reference string
}

// createGroup makes a new empty group at pl, which must not be a merge.
func (e *Engine) createGroup(id string, pl placement) *groupState {
	g := &groupState{id: id}
	e.groups[id] = g
	e.place(g, pl)
	ev := GroupEvent{Group: id, Location: g.location}
	e.queue(func() { e.addGroup.Emit(ev) })
	return g
}

// place puts a group that is not part of any location at pl.
func (e *Engine) place(g *groupState, pl placement) {
	g.window, g.url, g.reference = "", "", ""
	switch {
	case pl.floating != nil:
		g.location = LocationFloating
		g.box = *pl.floating
		e.floating = append(e.floating, g.id)
	case pl.popout != nil:
		g.location = LocationPopout
		g.box = pl.popout.box
		g.window = pl.popout.window
		g.url = pl.popout.url
		g.reference = pl.popout.reference
		e.popouts = append(e.popouts, g.id)
		e.windows.Register(g.window, g.id, g.url)
	case pl.splitRef != "":
		g.location = LocationGrid
		if err := e.grid.Insert(g.id, pl.splitRef, pl.side, e.opts.SplitRatio); err != nil {
			e.log.Warn("split failed, docking at edge", "group", g.id, "reference", pl.splitRef, "error", err)
			_ = e.grid.InsertAtEdge(g.id, pl.side)
		}
	default:
		g.location = LocationGrid
		side := pl.side
		if side == "" {
			side = geom.Right
		}
		_ = e.grid.InsertAtEdge(g.id, side)
	}
}

// deleteGroup removes an (empty) group from wherever it lives.
func (e *Engine) deleteGroup(g *groupState) {
	switch g.location {
	case LocationGrid:
		e.grid.Remove(g.id)
		for _, pid := range e.popouts {
			if p := e.groups[pid]; p.reference == g.id {
				p.reference = ""
			}
		}
	case LocationFloating:
		e.floating = deleteID(e.floating, g.id)
	case LocationPopout:
		e.popouts = deleteID(e.popouts, g.id)
		e.closeWindow(g)
	}
	delete(e.groups, g.id)
	e.mru = deleteID(e.mru, g.id)
	if e.activeGroup == g.id {
		e.activeGroup = ""
		if len(e.mru) > 0 {
			e.activeGroup = e.mru[0]
		} else if rest := e.orderedGroups(); len(rest) > 0 {
			e.setActiveGroup(rest[0].id)
		}
	}
	e.log.Debug("group removed", "op", "deleteGroup", "group", g.id, "location", g.location.String())
	ev := GroupEvent{Group: g.id, Location: g.location}
	e.queue(func() { e.removeGroup.Emit(ev) })
}

// detach takes a group out of its current location without deleting it.
func (e *Engine) detach(g *groupState) {
	switch g.location {
	case LocationGrid:
		e.grid.Remove(g.id)
		for _, pid := range e.popouts {
			if p := e.groups[pid]; p.reference == g.id {
				p.reference = ""
			}
		}
	case LocationFloating:
		e.floating = deleteID(e.floating, g.id)
	case LocationPopout:
		e.popouts = deleteID(e.popouts, g.id)
		e.closeWindow(g)
		g.reference, g.url = "", ""
	}
}

func deleteID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

// groupConstraints aggregates panel constraints for the grid: the largest
// minimum and the smallest maximum of the group's panels, plus the header.
func (e *Engine) groupConstraints(id string) grid.Constraints {
	g := e.groups[id]
	if g == nil {
		return grid.Constraints{}
	}
	var c grid.Constraints
	for _, pid := range g.panels {
		p := e.panels[pid]
		c.MinWidth = max(c.MinWidth, p.minWidth)
		c.MinHeight = max(c.MinHeight, p.minHeight)
		c.MaxWidth = minPositive(c.MaxWidth, p.maxWidth)
		c.MaxHeight = minPositive(c.MaxHeight, p.maxHeight)
	}
	if !g.hideHeader && c.MinHeight > 0 {
		c.MinHeight += e.opts.HeaderHeight
		if c.MaxHeight > 0 {
			c.MaxHeight += e.opts.HeaderHeight
		}
	}
	return c
}

func minPositive(a, b int) int {
	switch {
	case a <= 0:
		return b
	case b <= 0:
		return a
	}
	return min(a, b)
}
