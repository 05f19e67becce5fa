package dock

import (
	"slices"

	"workbench/internal/dnd"
	"workbench/internal/geom"
	"workbench/internal/grid"
)

// MainWindow is the window id of the main surface in hit tests.
const MainWindow = ""

// HitTest resolves the drop target under p on the given window. On the main
// window floating groups are tested topmost first, then the grid. A point in
// a group's tab strip yields a tab insertion index; a point in its content
// yields the drop region.
func (e *Engine) HitTest(windowID string, p geom.Point) dnd.Hit {
	miss := dnd.Hit{Kind: dnd.HitNone, Window: windowID, Point: p}
	g := e.groupUnder(windowID, p)
	if g == nil {
		return miss
	}
	hit := dnd.Hit{
		Group:    g.id,
		Window:   windowID,
		Locked:   g.locked,
		Detached: g.location != LocationGrid,
		Point:    p,
	}
	header := e.groupRect(g)
	header.Height = min(e.headerHeight(g), header.Height)
	if header.Contains(p) {
		hit.Kind = dnd.HitTabs
		hit.Index = dnd.TabIndex(e.tabRects(g), p.X)
		return hit
	}
	content := e.contentRect(g)
	if !content.Contains(p) {
		return miss
	}
	hit.Kind = dnd.HitContent
	hit.Position = dnd.Region(content, p, e.opts.Thresholds)
	return hit
}

func (e *Engine) groupUnder(windowID string, p geom.Point) *groupState {
	if windowID != MainWindow {
		id, ok := e.windows.GroupFor(windowID)
		if !ok {
			return nil
		}
		g := e.groups[id]
		if g == nil || !e.groupRect(g).Contains(p) {
			return nil
		}
		return g
	}
	for _, id := range slices.Backward(e.floating) {
		if g := e.groups[id]; g.box.Contains(p) {
			return g
		}
	}
	id, ok := e.grid.GroupAt(p)
	if !ok {
		return nil
	}
	return e.groups[id]
}

// FloatingAt returns the topmost floating group containing p, if any.
func (e *Engine) FloatingAt(p geom.Point) (string, bool) {
	for _, id := range slices.Backward(e.floating) {
		if e.groups[id].box.Contains(p) {
			return id, true
		}
	}
	return "", false
}

// Sashes returns the draggable boundaries of the grid.
func (e *Engine) Sashes() []grid.Sash { return e.grid.Sashes() }

// SashAt returns the grid sash under p. Floating groups cover sashes.
func (e *Engine) SashAt(p geom.Point) (grid.Sash, bool) {
	if _, covered := e.FloatingAt(p); covered {
		return grid.Sash{}, false
	}
	return e.grid.SashAt(p)
}

// ResizeSash drags a sash by delta cells and returns the distance actually
// moved after constraints.
func (e *Engine) ResizeSash(s grid.Sash, delta int) int {
	defer e.flush()
	applied := e.grid.ResizeSash(s.Branch, s.Index, delta)
	if applied != 0 {
		e.log.Debug("sash moved", "op", "ResizeSash", "index", s.Index, "delta", applied)
		e.syncNodes()
		e.changed()
	}
	return applied
}
