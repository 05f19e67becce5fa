package dock

import (
	"fmt"
	"maps"
	"slices"

	"workbench/internal/bridge"
	"workbench/internal/errors"
	"workbench/internal/geom"
	"workbench/internal/layout"
)

type panelState struct {
	id           string
	title        string
	component    string
	tabComponent string
	params       map[string]any
	renderer     layout.Renderer
	group        string

	minWidth, minHeight int
	maxWidth, maxHeight int

	node      *bridge.Node
	tabNode   *bridge.Node
	handle    bridge.Handle
	tabHandle bridge.Handle

	mountErr    error // content slot
	tabMountErr error
}

// DuplicateError is returned by CreatePanel for an id already in use.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("panel %q already exists", e.ID)
}

// MountError reports content that failed to mount. The panel stays in the
// layout; Panel.Remount retries.
type MountError struct {
	Panel     string
	Component string
	Err       error
}

func (e *MountError) Error() string {
	return fmt.Sprintf("mount %s for panel %q: %v", e.Component, e.Panel, e.Err)
}

func (e *MountError) Unwrap() error { return e.Err }

// Position directs where a panel or group goes. With a reference and an edge
// Direction it splits beside the reference; with a reference and no edge it
// joins the reference group at Index. Without a reference an edge Direction
// means that edge of the whole grid.
type Position struct {
	Direction      geom.Position
	ReferencePanel string
	ReferenceGroup string
	Index          *int
}

// Index returns a pointer for Position.Index.
func Index(i int) *int { return &i }

// AddPanelOptions describe a new panel.
type AddPanelOptions struct {
	ID           string
	Component    string
	TabComponent string
	Title        string
	Params       map[string]any
	Renderer     layout.Renderer

	Position *Position
	// Floating creates the panel in a new floating group at this rectangle.
	Floating *geom.Rect
	// Inactive adds the panel without making it the visible tab.
	Inactive bool

	MinimumWidth, MinimumHeight int
	MaximumWidth, MaximumHeight int
}

// Panel is a handle to a panel. It resolves through the engine on every call,
// so a handle to a removed panel is inert.
type Panel struct {
	e  *Engine
	id string
}

func (e *Engine) panelHandle(id string) *Panel { return &Panel{e: e, id: id} }

func (p *Panel) state() *panelState {
	if p == nil || p.e == nil {
		return nil
	}
	return p.e.panels[p.id]
}

// ID returns the panel id.
func (p *Panel) ID() string { return p.id }

// Exists reports whether the panel is still part of the layout.
func (p *Panel) Exists() bool { return p.state() != nil }

// Title returns the panel title.
func (p *Panel) Title() string {
	if s := p.state(); s != nil {
		return s.title
	}
	return ""
}

// SetTitle changes the title and notifies title listeners.
func (p *Panel) SetTitle(title string) {
	s := p.state()
	if s == nil || s.title == title {
		return
	}
	defer p.e.flush()
	s.title = title
	ev := TitleEvent{Panel: s.id, Title: title}
	p.e.queue(func() { p.e.titleChange.Emit(ev) })
	p.e.changed()
}

// Component returns the content component name.
func (p *Panel) Component() string {
	if s := p.state(); s != nil {
		return s.component
	}
	return ""
}

// Params returns a copy of the panel parameters.
func (p *Panel) Params() map[string]any {
	if s := p.state(); s != nil {
		return maps.Clone(s.params)
	}
	return nil
}

// UpdateParameters merges params into the panel's parameters (a nil value
// deletes the key) and forwards them to mounted content without remounting.
func (p *Panel) UpdateParameters(params map[string]any) {
	s := p.state()
	if s == nil || len(params) == 0 {
		return
	}
	defer p.e.flush()
	if s.params == nil {
		s.params = make(map[string]any)
	}
	for k, v := range params {
		if v == nil {
			delete(s.params, k)
		} else {
			s.params[k] = v
		}
	}
	if s.handle != nil {
		s.handle.Update(params)
	}
	if s.tabHandle != nil {
		s.tabHandle.Update(params)
	}
	p.e.changed()
}

// Renderer returns the renderer mode.
func (p *Panel) Renderer() layout.Renderer {
	if s := p.state(); s != nil {
		return s.renderer
	}
	return ""
}

// SetRenderer switches the renderer mode, mounting or disposing content as
// the new mode requires. Unknown modes are ignored.
func (p *Panel) SetRenderer(r layout.Renderer) {
	s := p.state()
	if s == nil || r == "" || !r.Valid() || s.renderer == r {
		return
	}
	defer p.e.flush()
	s.renderer = r
	if err := p.e.syncMounts(); err != nil {
		p.e.log.Warn("mount failed", "op", "SetRenderer", "panel", s.id, "error", err)
	}
	p.e.changed()
}

// Group returns the owning group, or nil.
func (p *Panel) Group() *Group {
	if s := p.state(); s != nil {
		return p.e.groupHandle(s.group)
	}
	return nil
}

// Focus makes the panel the visible tab and its group active.
func (p *Panel) Focus() {
	if s := p.state(); s != nil {
		defer p.e.flush()
		if err := p.e.focus(s); err != nil {
			p.e.log.Warn("mount failed", "op", "Focus", "panel", s.id, "error", err)
		}
	}
}

// Close removes the panel.
func (p *Panel) Close() { p.e.RemovePanel(p.id) }

// IsActive reports whether the panel is the visible tab of the active group.
func (p *Panel) IsActive() bool {
	s := p.state()
	if s == nil || s.group != p.e.activeGroup {
		return false
	}
	return p.e.groups[s.group].active == s.id
}

// IsVisible reports whether the panel is the visible tab of its group.
func (p *Panel) IsVisible() bool {
	s := p.state()
	return s != nil && p.e.groups[s.group].active == s.id
}

// Mounted reports whether content is currently mounted.
func (p *Panel) Mounted() bool {
	s := p.state()
	return s != nil && s.handle != nil
}

// MountErr returns the last content mount failure, or nil.
func (p *Panel) MountErr() error {
	if s := p.state(); s != nil {
		return s.mountErr
	}
	return nil
}

// TabMountErr returns the last tab component mount failure, or nil. The
// title is drawn in place of a tab that failed to mount.
func (p *Panel) TabMountErr() error {
	if s := p.state(); s != nil {
		return s.tabMountErr
	}
	return nil
}

// Node returns the engine-owned content node.
func (p *Panel) Node() *bridge.Node {
	if s := p.state(); s != nil {
		return s.node
	}
	return nil
}

// TabNode returns the tab node, or nil when the panel has no tab component.
func (p *Panel) TabNode() *bridge.Node {
	if s := p.state(); s != nil {
		return s.tabNode
	}
	return nil
}

// Constraints returns the panel's minimum and maximum size.
func (p *Panel) Constraints() (minW, minH, maxW, maxH int) {
	if s := p.state(); s != nil {
		return s.minWidth, s.minHeight, s.maxWidth, s.maxHeight
	}
	return
}

// Remount disposes any mounted content and mounts it again if the renderer
// mode wants it mounted.
func (p *Panel) Remount() error {
	s := p.state()
	if s == nil {
		return nil
	}
	defer p.e.flush()
	p.e.unmount(s)
	return p.e.syncMounts()
}

// AddPanel opens a panel, or focuses it if the id is already in use.
func (e *Engine) AddPanel(opts AddPanelOptions) (*Panel, error) {
	const op = errors.Op("dock.AddPanel")
	s := e.span(string(op), panelAttr(opts.ID))
	var err error
	defer func() { endSpan(s, err) }()
	defer e.flush()

	if opts.ID == "" {
		err = errors.LayoutInvalid(op, &layout.InvariantError{Invariant: layout.InvPanelID, Path: "id"})
		return nil, err
	}
	if existing := e.panels[opts.ID]; existing != nil {
		e.log.Debug("panel focused", "op", "AddPanel", "panel", opts.ID, "group", existing.group)
		if mErr := e.focus(existing); mErr != nil {
			err = errors.E(op, errors.KindMount, mErr)
		}
		return e.panelHandle(opts.ID), err
	}
	var p *Panel
	p, err = e.create(op, opts)
	return p, err
}

// CreatePanel opens a new panel and fails if the id is already in use.
func (e *Engine) CreatePanel(opts AddPanelOptions) (*Panel, error) {
	const op = errors.Op("dock.CreatePanel")
	s := e.span(string(op), panelAttr(opts.ID))
	var err error
	defer func() { endSpan(s, err) }()
	defer e.flush()

	if opts.ID == "" {
		err = errors.LayoutInvalid(op, &layout.InvariantError{Invariant: layout.InvPanelID, Path: "id"})
		return nil, err
	}
	if e.panels[opts.ID] != nil {
		err = errors.LayoutInvalid(op, &DuplicateError{ID: opts.ID})
		return nil, err
	}
	var p *Panel
	p, err = e.create(op, opts)
	return p, err
}

func (e *Engine) create(op errors.Op, opts AddPanelOptions) (*Panel, error) {
	if !opts.Renderer.Valid() {
		return nil, errors.LayoutInvalid(op, &layout.InvariantError{Invariant: layout.InvRenderer, ID: opts.ID, Path: "renderer"})
	}
	if badRange(opts.MinimumWidth, opts.MaximumWidth) || badRange(opts.MinimumHeight, opts.MaximumHeight) {
		return nil, errors.LayoutInvalid(op, &layout.InvariantError{Invariant: layout.InvConstraints, ID: opts.ID, Path: "constraints"})
	}
	var pl placement
	if opts.Floating != nil {
		pl = placement{floating: opts.Floating}
	} else {
		var err error
		if pl, err = e.resolve(op, opts.Position); err != nil {
			return nil, err
		}
	}

	// Validation is complete; mutate.
	var g *groupState
	if pl.merge != "" {
		g = e.groups[pl.merge]
	} else {
		g = e.createGroup(e.newGroupID(), pl)
	}
	renderer := opts.Renderer
	if renderer == "" {
		renderer = e.opts.DefaultRenderer
	}
	p := &panelState{
		id:           opts.ID,
		title:        opts.Title,
		component:    opts.Component,
		tabComponent: opts.TabComponent,
		params:       maps.Clone(opts.Params),
		renderer:     renderer,
		minWidth:     opts.MinimumWidth,
		minHeight:    opts.MinimumHeight,
		maxWidth:     opts.MaximumWidth,
		maxHeight:    opts.MaximumHeight,
	}
	e.newNodes(p)
	e.panels[p.id] = p
	e.attach(p, g, pl.index)
	if !opts.Inactive || g.active == "" {
		g.active = p.id
	}
	if !opts.Inactive || e.activeGroup == "" {
		e.setActiveGroup(g.id)
	}

	e.log.Debug("panel added", "op", string(op), "panel", p.id, "group", g.id)
	ev := PanelEvent{Panel: p.id, Group: g.id}
	e.queue(func() { e.addPanel.Emit(ev) })
	e.changed()

	if err := e.syncMounts(); err != nil {
		return e.panelHandle(p.id), errors.E(op, errors.KindMount, err)
	}
	return e.panelHandle(p.id), nil
}

func badRange(lo, hi int) bool {
	return lo < 0 || hi < 0 || (hi > 0 && lo > hi)
}

// resolve turns a position directive into a placement without mutating.
func (e *Engine) resolve(op errors.Op, pos *Position) (placement, error) {
	if pos != nil && !pos.Direction.Valid() && pos.Direction != "" {
		return placement{}, errors.E(op, errors.KindInvalid, fmt.Sprintf("unknown direction %q", pos.Direction))
	}
	ref := ""
	if pos != nil {
		switch {
		case pos.ReferencePanel != "":
			p := e.panels[pos.ReferencePanel]
			if p == nil {
				return placement{}, errors.PanelNotFound(op, pos.ReferencePanel)
			}
			ref = p.group
		case pos.ReferenceGroup != "":
			if e.groups[pos.ReferenceGroup] == nil {
				return placement{}, errors.GroupNotFound(op, pos.ReferenceGroup)
			}
			ref = pos.ReferenceGroup
		}
	}

	if ref == "" {
		if pos != nil && pos.Direction.IsEdge() {
			return placement{edge: true, side: pos.Direction}, nil
		}
		if e.groups[e.activeGroup] != nil {
			return placement{merge: e.activeGroup, index: indexOr(pos, -1)}, nil
		}
		if leaves := e.grid.Leaves(); len(leaves) > 0 {
			return placement{merge: leaves[0], index: indexOr(pos, -1)}, nil
		}
		return placement{edge: true, side: geom.Right}, nil
	}

	if !pos.Direction.IsEdge() || e.groups[ref].location != LocationGrid {
		return placement{merge: ref, index: indexOr(pos, -1)}, nil
	}
	return placement{splitRef: ref, side: pos.Direction}, nil
}

func indexOr(pos *Position, def int) int {
	if pos == nil || pos.Index == nil {
		return def
	}
	return *pos.Index
}

// attach inserts p into g at index (-1 or out of range appends).
func (e *Engine) attach(p *panelState, g *groupState, index int) {
	if index < 0 || index > len(g.panels) {
		index = len(g.panels)
	}
	g.panels = slices.Insert(g.panels, index, p.id)
	p.group = g.id
	if g.location == LocationGrid {
		e.grid.Invalidate(g.id)
	}
}

// detachPanel removes p from its group, choosing a new active tab: the panel
// now at the same index, else the one before it.
func (e *Engine) detachPanel(p *panelState) *groupState {
	g := e.groups[p.group]
	i := g.indexOf(p.id)
	g.panels = slices.Delete(g.panels, i, i+1)
	if g.active == p.id {
		g.active = ""
		switch {
		case i < len(g.panels):
			g.active = g.panels[i]
		case len(g.panels) > 0:
			g.active = g.panels[len(g.panels)-1]
		}
	}
	if g.location == LocationGrid {
		e.grid.Invalidate(g.id)
	}
	return g
}

// RemovePanel removes a panel. Unknown ids are a no-op. A group left empty is
// removed too.
func (e *Engine) RemovePanel(id string) bool {
	if e.panels[id] == nil {
		return false
	}
	s := e.span("dock.RemovePanel", panelAttr(id))
	defer endSpan(s, nil)
	defer e.flush()
	e.deletePanel(id)
	if err := e.syncMounts(); err != nil {
		e.log.Warn("mount failed", "op", "RemovePanel", "error", err)
	}
	e.changed()
	return true
}

func (e *Engine) deletePanel(id string) {
	p := e.panels[id]
	g := e.detachPanel(p)
	e.unmount(p)
	delete(e.panels, id)
	e.log.Debug("panel removed", "op", "RemovePanel", "panel", id, "group", g.id)
	ev := PanelEvent{Panel: id, Group: g.id}
	e.queue(func() { e.removePanel.Emit(ev) })
	if len(g.panels) == 0 {
		e.deleteGroup(g)
	}
}

// GetPanel returns a handle for id, or nil.
func (e *Engine) GetPanel(id string) *Panel {
	if e.panels[id] == nil {
		return nil
	}
	return e.panelHandle(id)
}

// Panels returns every panel in group order, then tab order.
func (e *Engine) Panels() []*Panel {
	var out []*Panel
	for _, g := range e.orderedGroups() {
		for _, id := range g.panels {
			out = append(out, e.panelHandle(id))
		}
	}
	return out
}

// ActivePanel returns the visible tab of the active group, or nil.
func (e *Engine) ActivePanel() *Panel {
	g := e.groups[e.activeGroup]
	if g == nil || g.active == "" {
		return nil
	}
	return e.panelHandle(g.active)
}

func (e *Engine) focus(p *panelState) error {
	g := e.groups[p.group]
	if g.active != p.id || e.activeGroup != g.id {
		g.active = p.id
		e.setActiveGroup(g.id)
		e.changed()
	}
	return e.syncMounts()
}

// containerAPI is the group API given to mounted content. It follows the
// panel, so content keeps working after its panel moves between groups.
type containerAPI struct {
	e     *Engine
	panel string
}

func (c containerAPI) group() *Group {
	if p := c.e.panels[c.panel]; p != nil {
		return c.e.groupHandle(p.group)
	}
	return &Group{e: c.e}
}

func (c containerAPI) ID() string                          { return c.group().ID() }
func (c containerAPI) PanelIDs() []string                  { return c.group().PanelIDs() }
func (c containerAPI) ActivePanelID() string               { return c.group().ActivePanelID() }
func (c containerAPI) SetActivePanel(id string) bool       { return c.group().SetActivePanel(id) }
func (c containerAPI) MovePanel(id string, index int) bool { return c.group().MovePanel(id, index) }
func (c containerAPI) Locked() bool                        { return c.group().Locked() }
func (c containerAPI) SetLocked(locked bool)               { c.group().SetLocked(locked) }
func (c containerAPI) Close()                              { c.group().Close() }

var (
	_ bridge.PanelAPI = (*Panel)(nil)
	_ bridge.GroupAPI = (*Group)(nil)
	_ bridge.GroupAPI = containerAPI{}
)

func (p *panelState) displayTitle() string {
	if p.title != "" {
		return p.title
	}
	return p.id
}
