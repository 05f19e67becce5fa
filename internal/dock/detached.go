package dock

import (
	"fmt"

	"workbench/internal/errors"
	"workbench/internal/geom"
	"workbench/internal/window"
)

// AddFloatingGroup lifts a panel (into a new group) or a whole group out of
// its location and floats it above the grid at box.
func (e *Engine) AddFloatingGroup(src MoveSource, box geom.Rect) (*Group, error) {
	const op = errors.Op("dock.AddFloatingGroup")
	s := e.span(string(op), panelAttr(src.Panel), groupAttr(src.Group))
	var err error
	defer func() { endSpan(s, err) }()
	defer e.flush()

	source, err := e.source(op, src)
	if err != nil {
		return nil, err
	}
	if box.Width <= 0 || box.Height <= 0 {
		box = e.defaultFloatBox(box)
	}
	id := e.relocate(source, placement{floating: &box})
	e.log.Debug("group floated", "op", "AddFloatingGroup", "group", id, "box", box.String())
	if mErr := e.syncMounts(); mErr != nil {
		err = errors.E(op, errors.KindMount, mErr)
	}
	e.changed()
	return e.groupHandle(id), err
}

// PopoutOptions describe the window a popout group opens in.
type PopoutOptions struct {
	Box   geom.Rect
	URL   string
	Title string
}

// AddPopoutGroup moves a panel or a whole group into its own window. The
// window is opened before any state changes, so a host failure leaves the
// layout untouched. The group remembers the grid group it left (or the
// nearest remaining one) so it can be re-docked there.
func (e *Engine) AddPopoutGroup(src MoveSource, opts PopoutOptions) (*Group, error) {
	const op = errors.Op("dock.AddPopoutGroup")
	s := e.span(string(op), panelAttr(src.Panel), groupAttr(src.Group))
	var err error
	defer func() { endSpan(s, err) }()
	defer e.flush()

	source, err := e.source(op, src)
	if err != nil {
		return nil, err
	}
	from := e.groups[source.Group]
	id := from.id
	keepsGroup := source.WholeGroup() || len(from.panels) == 1
	if !keepsGroup {
		id = e.newGroupID()
	}

	title := opts.Title
	if title == "" && source.Panel != "" {
		title = e.panels[source.Panel].displayTitle()
	}
	if title == "" {
		title = id
	}
	if opts.Box.Width <= 0 || opts.Box.Height <= 0 {
		opts.Box = e.defaultFloatBox(opts.Box)
	}
	windowID, err := e.openWindow(id, title, opts.Box)
	if err != nil {
		err = errors.E(op, errors.KindIO, err)
		return nil, err
	}

	info := &popoutInfo{
		box:       opts.Box,
		window:    windowID,
		url:       opts.URL,
		reference: e.referenceFor(from, keepsGroup),
	}
	e.relocate(source, placement{popout: info, id: id})
	e.log.Info("popout opened", "op", "AddPopoutGroup", "group", id, "window", windowID, "reference", info.reference)
	if mErr := e.syncMounts(); mErr != nil {
		err = errors.E(op, errors.KindMount, mErr)
	}
	e.changed()
	return e.groupHandle(id), err
}

// referenceFor picks the grid group a popout leaving from should re-dock
// beside: from itself when it stays in the grid, otherwise a neighbour.
func (e *Engine) referenceFor(from *groupState, leaves bool) string {
	if from.location != LocationGrid {
		if from.location == LocationPopout {
			return from.reference
		}
		return ""
	}
	if !leaves {
		return from.id
	}
	for _, side := range []geom.Position{geom.Left, geom.Top, geom.Right, geom.Bottom} {
		if n, ok := e.grid.Neighbor(from.id, side); ok {
			return n
		}
	}
	for _, id := range e.grid.Leaves() {
		if id != from.id {
			return id
		}
	}
	return ""
}

func (e *Engine) openWindow(groupID, title string, box geom.Rect) (string, error) {
	if e.opts.WindowHost == nil {
		return "popout-" + groupID, nil
	}
	return e.opts.WindowHost.Open(groupID, title, window.Box{
		Top: box.Y, Left: box.X, Width: box.Width, Height: box.Height,
	})
}

// closeWindow forgets g's window and asks the host to close it. Windows the
// host already reported closed are not tracked any more and are skipped.
func (e *Engine) closeWindow(g *groupState) {
	id, ok := e.windows.UnregisterGroup(g.id)
	g.window = ""
	if !ok || e.opts.WindowHost == nil {
		return
	}
	if err := e.opts.WindowHost.Close(id); err != nil {
		e.log.Warn("closing popout window failed", "group", g.id, "window", id, "error", err)
	}
}

// ClosePopout closes a popout group's window. With Discard the group and its
// panels are removed; with Redock the group returns to the grid beside its
// reference group, or at the right edge when it has none.
func (e *Engine) ClosePopout(groupID string, policy ClosePolicy) error {
	const op = errors.Op("dock.ClosePopout")
	s := e.span(string(op), groupAttr(groupID))
	var err error
	defer func() { endSpan(s, err) }()
	defer e.flush()

	g := e.groups[groupID]
	if g == nil {
		err = errors.GroupNotFound(op, groupID)
		return err
	}
	if g.location != LocationPopout {
		err = errors.E(op, errors.KindInvalid, fmt.Sprintf("group %q is not a popout", groupID))
		return err
	}
	e.closeDetached(g, policy)
	if mErr := e.syncMounts(); mErr != nil {
		err = errors.E(op, errors.KindMount, mErr)
	}
	e.changed()
	return err
}

func (e *Engine) closeDetached(g *groupState, policy ClosePolicy) {
	if policy == Discard {
		e.log.Info("popout discarded", "group", g.id, "panels", len(g.panels))
		e.removeGroupAndPanels(g)
		return
	}
	ref := g.reference
	e.detach(g)
	pl := placement{edge: true, side: geom.Right}
	if ref != "" && e.grid.Has(ref) {
		pl = placement{splitRef: ref, side: geom.Right}
	}
	e.place(g, pl)
	e.setActiveGroup(g.id)
	e.log.Info("popout redocked", "group", g.id, "reference", ref)
}

// SetFloatingRect moves or resizes a floating group, or records the new host
// bounds of a popout window.
func (e *Engine) SetFloatingRect(groupID string, box geom.Rect) bool {
	g := e.groups[groupID]
	if g == nil || g.location == LocationGrid || box.Width <= 0 || box.Height <= 0 {
		return false
	}
	if g.box == box {
		return true
	}
	defer e.flush()
	g.box = box
	e.syncNodes()
	e.changed()
	return true
}

// RaiseFloating draws a floating group above the others.
func (e *Engine) RaiseFloating(groupID string) bool {
	g := e.groups[groupID]
	if g == nil || g.location != LocationFloating {
		return false
	}
	if len(e.floating) > 0 && e.floating[len(e.floating)-1] == groupID {
		return true
	}
	defer e.flush()
	e.floating = append(deleteID(e.floating, groupID), groupID)
	e.changed()
	return true
}

// WindowClosed reports that the host closed a popout window on its own. The
// group is handled according to Options.PopoutClosePolicy.
func (e *Engine) WindowClosed(windowID string) bool {
	groupID, ok := e.windows.GroupFor(windowID)
	if !ok {
		return false
	}
	e.windows.Unregister(windowID)
	g := e.groups[groupID]
	if g == nil || g.location != LocationPopout {
		return false
	}
	s := e.span("dock.WindowClosed", groupAttr(groupID))
	defer endSpan(s, nil)
	defer e.flush()
	g.window = ""
	e.closeDetached(g, e.opts.PopoutClosePolicy)
	if err := e.syncMounts(); err != nil {
		e.log.Warn("mount failed", "op", "WindowClosed", "error", err)
	}
	e.changed()
	return true
}

// PruneWindows asks the liveness checker which popout windows are still open
// and closes the groups of those that are gone. It returns how many groups
// were affected.
func (e *Engine) PruneWindows() (int, error) {
	const op = errors.Op("dock.PruneWindows")
	gone, err := e.windows.Prune()
	if err != nil {
		return 0, errors.E(op, errors.KindIO, err)
	}
	if len(gone) == 0 {
		return 0, nil
	}
	s := e.span(string(op))
	defer endSpan(s, nil)
	defer e.flush()
	n := 0
	for _, w := range gone {
		g := e.groups[w.GroupID]
		if g == nil || g.location != LocationPopout {
			continue
		}
		e.log.Info("popout window gone", "op", "PruneWindows", "group", g.id, "window", w.WindowID)
		g.window = ""
		e.closeDetached(g, e.opts.PopoutClosePolicy)
		n++
	}
	if n > 0 {
		if err := e.syncMounts(); err != nil {
			e.log.Warn("mount failed", "op", "PruneWindows", "error", err)
		}
		e.changed()
	}
	return n, nil
}

// Windows lists the open popout windows, ordered by window id.
func (e *Engine) Windows() []window.Tracked { return e.windows.All() }

// FloatingGroups returns floating groups from bottom to top.
func (e *Engine) FloatingGroups() []*Group {
	out := make([]*Group, 0, len(e.floating))
	for _, id := range e.floating {
		out = append(out, e.groupHandle(id))
	}
	return out
}

// PopoutGroups returns popout groups in creation order.
func (e *Engine) PopoutGroups() []*Group {
	out := make([]*Group, 0, len(e.popouts))
	for _, id := range e.popouts {
		out = append(out, e.groupHandle(id))
	}
	return out
}
