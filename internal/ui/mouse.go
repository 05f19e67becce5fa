package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"workbench/internal/dnd"
	"workbench/internal/dock"
	"workbench/internal/geom"
	"workbench/internal/grid"
)

type pointerKind int

const (
	pointerIdle     pointerKind = iota
	pointerSash                 // resizing a sash
	pointerPending              // pressed on a tab or header, not moved yet
	pointerDragging             // drag and drop in progress
	pointerMove                 // moving a floating group by its header
)

// pointer tracks the gesture started by the last left-button press.
type pointer struct {
	kind   pointerKind
	sash   grid.Sash
	source dock.MoveSource
	group  string
	origin geom.Point
	last   geom.Point
}

func (a *AppModel) cancelPointer() {
	a.dnd.Cancel()
	a.pointer = pointer{}
}

func (a *AppModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.Overlays.Len() > 0 {
		return nil
	}
	p := geom.Point{X: msg.X, Y: msg.Y}

	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		hit := a.engine.HitTest(a.windowID(), p)
		if hit.Group == "" {
			return nil
		}
		return a.contentOf(hit.Group, msg)
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			a.press(p)
		}
	case tea.MouseActionMotion:
		a.motion(p)
	case tea.MouseActionRelease:
		a.release(p)
	}
	return nil
}

func (a *AppModel) contentOf(groupID string, msg tea.Msg) tea.Cmd {
	g := a.engine.GetGroup(groupID)
	if g == nil || a.opts.Bridge == nil {
		return nil
	}
	panel := a.engine.GetPanel(g.ActivePanelID())
	if panel == nil || panel.Node() == nil {
		return nil
	}
	if c, ok := a.opts.Bridge.Content(panel.Node().ID); ok {
		return c.Update(msg)
	}
	return nil
}

func (a *AppModel) press(p geom.Point) {
	a.cancelPointer()
	if _, lh := a.layoutSize(); p.Y >= lh {
		return
	}
	if a.screen == "" {
		if _, floating := a.engine.FloatingAt(p); !floating {
			if s, ok := a.engine.SashAt(p); ok {
				a.pointer = pointer{kind: pointerSash, sash: s, origin: p, last: p}
				return
			}
		}
	}

	hit := a.engine.HitTest(a.windowID(), p)
	g := a.engine.GetGroup(hit.Group)
	if g == nil {
		return
	}
	if g.Location() == dock.LocationFloating {
		a.engine.RaiseFloating(g.ID())
	}
	switch hit.Kind {
	case dnd.HitTabs:
		ids := g.PanelIDs()
		for i, r := range a.engine.TabRects(g.ID()) {
			if r.Contains(p) && i < len(ids) {
				a.pointer = pointer{kind: pointerPending, source: dock.MoveSource{Panel: ids[i]}, origin: p, last: p}
				return
			}
		}
		if g.Location() == dock.LocationFloating {
			a.engine.SetActiveGroup(g.ID())
			a.pointer = pointer{kind: pointerMove, group: g.ID(), origin: p, last: p}
			return
		}
		a.pointer = pointer{kind: pointerPending, source: dock.MoveSource{Group: g.ID()}, origin: p, last: p}
	case dnd.HitContent:
		a.engine.SetActiveGroup(g.ID())
	}
}

func (a *AppModel) motion(p geom.Point) {
	switch a.pointer.kind {
	case pointerSash:
		s := a.pointer.sash
		delta := p.X - a.pointer.last.X
		if s.Orientation == grid.Vertical {
			delta = p.Y - a.pointer.last.Y
		}
		if delta == 0 {
			return
		}
		applied := a.engine.ResizeSash(s, delta)
		if s.Orientation == grid.Vertical {
			a.pointer.last.Y += applied
		} else {
			a.pointer.last.X += applied
		}

	case pointerMove:
		g := a.engine.GetGroup(a.pointer.group)
		if g == nil {
			a.pointer = pointer{}
			return
		}
		r := g.Rect()
		r.X += p.X - a.pointer.last.X
		r.Y += p.Y - a.pointer.last.Y
		a.engine.SetFloatingRect(g.ID(), a.clampBox(r))
		a.pointer.last = p

	case pointerPending:
		if p == a.pointer.origin {
			return
		}
		src, ok := a.engine.DragSource(a.pointer.source)
		if !ok || !a.dnd.Start(src) {
			a.pointer = pointer{}
			return
		}
		a.pointer.kind = pointerDragging
		a.dnd.Over(a.engine.HitTest(a.windowID(), p))

	case pointerDragging:
		a.dnd.Over(a.engine.HitTest(a.windowID(), p))
	}
}

func (a *AppModel) release(p geom.Point) {
	ptr := a.pointer
	a.pointer = pointer{}
	switch ptr.kind {
	case pointerPending:
		// A press without motion is a click.
		if ptr.source.Panel != "" {
			if panel := a.engine.GetPanel(ptr.source.Panel); panel != nil {
				panel.Focus()
			}
		} else {
			a.engine.SetActiveGroup(ptr.source.Group)
		}

	case pointerDragging:
		instr, ok := a.dnd.Drop(a.engine.HitTest(a.windowID(), p))
		if !ok || instr.Kind == dnd.Noop {
			return
		}
		if instr.Kind == dnd.Float {
			instr.Box = a.clampBox(instr.Box)
		}
		a.log.Debug("drop", "instruction", instr.String())
		if err := a.engine.Apply(instr); err != nil {
			a.setError("drop", err)
		}
	}
}

// clampBox keeps a floating box inside the layout area.
func (a *AppModel) clampBox(r geom.Rect) geom.Rect {
	lw, lh := a.layoutSize()
	r.Width = min(r.Width, lw)
	r.Height = min(r.Height, lh)
	r.X = max(min(r.X, lw-r.Width), 0)
	r.Y = max(min(r.Y, lh-r.Height), 0)
	return r
}
