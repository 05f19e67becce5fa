package dock

import (
	"fmt"
	"slices"

	"workbench/internal/dnd"
	"workbench/internal/errors"
	"workbench/internal/geom"
)

// MoveSource names what to move: one panel, or a whole group when Panel is
// empty.
type MoveSource struct {
	Group string
	Panel string
}

// MoveTarget names where to move it. An edge Position splits beside Group (or
// the whole grid when Group is empty); Center merges into Group at Index.
type MoveTarget struct {
	Group    string
	Position geom.Position
	Index    *int
}

// MoveGroupOrPanel moves a panel or group programmatically. It derives the
// same instruction a drag gesture would and applies it; moves that would
// change nothing are silently ignored.
func (e *Engine) MoveGroupOrPanel(src MoveSource, target MoveTarget) error {
	const op = errors.Op("dock.MoveGroupOrPanel")
	source, err := e.source(op, src)
	if err != nil {
		return err
	}
	if target.Group == "" {
		if !target.Position.IsEdge() {
			return errors.E(op, errors.KindInvalid, "a move without a target group needs an edge position")
		}
		return e.Apply(dnd.Instruction{Kind: dnd.Split, Source: source, Position: target.Position})
	}
	tg := e.groups[target.Group]
	if tg == nil {
		return errors.GroupNotFound(op, target.Group)
	}
	hit := dnd.Hit{
		Kind:     dnd.HitContent,
		Group:    tg.id,
		Window:   tg.window,
		Position: target.Position,
		Locked:   tg.locked,
		Detached: tg.location != LocationGrid,
	}
	if target.Position == "" {
		hit.Position = geom.Center
	}
	if target.Index != nil && hit.Position == geom.Center {
		hit.Kind = dnd.HitTabs
		hit.Index = *target.Index
	}
	return e.Apply(dnd.Derive(source, hit, dnd.Env{}))
}

// DragSource describes a panel or group for a drag gesture.
func (e *Engine) DragSource(src MoveSource) (dnd.Source, bool) {
	s, err := e.source("dock.DragSource", src)
	return s, err == nil
}

func (e *Engine) source(op errors.Op, src MoveSource) (dnd.Source, error) {
	if src.Panel != "" {
		p := e.panels[src.Panel]
		if p == nil {
			return dnd.Source{}, errors.PanelNotFound(op, src.Panel)
		}
		g := e.groups[p.group]
		return dnd.Source{
			Panel:     p.id,
			Group:     g.id,
			Window:    g.window,
			Index:     g.indexOf(p.id),
			GroupSize: len(g.panels),
		}, nil
	}
	g := e.groups[src.Group]
	if g == nil {
		return dnd.Source{}, errors.GroupNotFound(op, src.Group)
	}
	return dnd.Source{Group: g.id, Window: g.window, GroupSize: len(g.panels)}, nil
}

// Apply performs a docking instruction. It is the only step of a drag
// gesture that mutates state. A panel moving between groups (including
// between windows) leaves its source and joins its destination within this
// call, and listeners only observe the result.
func (e *Engine) Apply(instr dnd.Instruction) error {
	const op = errors.Op("dock.Apply")
	s := e.span(string(op), panelAttr(instr.Source.Panel), groupAttr(instr.Source.Group))
	var err error
	defer func() { endSpan(s, err) }()
	defer e.flush()

	if instr.Kind == dnd.Noop {
		return nil
	}
	if err = e.checkInstruction(op, instr); err != nil {
		return err
	}
	e.log.Debug("apply", "op", "Apply", "instruction", instr.String())

	src := instr.Source
	switch instr.Kind {
	case dnd.Reorder:
		g := e.groups[instr.Target]
		if i := g.indexOf(src.Panel); i >= 0 {
			g.active = src.Panel
			e.reorder(g, i, instr.Index)
		}
		e.setActiveGroup(g.id)
	case dnd.Merge:
		target := e.groups[instr.Target]
		if src.WholeGroup() && src.Group == target.id {
			break
		}
		if src.WholeGroup() {
			e.mergeGroup(e.groups[src.Group], target, instr.Index)
		} else {
			e.movePanelTo(e.panels[src.Panel], target, instr.Index)
		}
		e.setActiveGroup(target.id)
	case dnd.Split:
		pl := placement{edge: true, side: instr.Position}
		if instr.Target != "" {
			pl = placement{splitRef: instr.Target, side: instr.Position}
		}
		e.relocate(src, pl)
	case dnd.Float:
		box := instr.Box
		if box.Width <= 0 || box.Height <= 0 {
			box = e.defaultFloatBox(box)
		}
		e.relocate(src, placement{floating: &box})
	default:
		err = errors.E(op, errors.KindInvalid, fmt.Sprintf("unknown instruction kind %d", instr.Kind))
		return err
	}

	if mErr := e.syncMounts(); mErr != nil {
		err = errors.E(op, errors.KindMount, mErr)
	}
	e.changed()
	return err
}

func (e *Engine) checkInstruction(op errors.Op, instr dnd.Instruction) error {
	src := instr.Source
	if src.Panel != "" {
		p := e.panels[src.Panel]
		if p == nil {
			return errors.PanelNotFound(op, src.Panel)
		}
		if src.Group != "" && p.group != src.Group {
			return errors.E(op, errors.KindInvalid, fmt.Sprintf("panel %q is not in group %q", src.Panel, src.Group))
		}
	} else if e.groups[src.Group] == nil {
		return errors.GroupNotFound(op, src.Group)
	}
	switch instr.Kind {
	case dnd.Reorder, dnd.Merge:
		if e.groups[instr.Target] == nil {
			return errors.GroupNotFound(op, instr.Target)
		}
	case dnd.Split:
		if !instr.Position.IsEdge() {
			return errors.E(op, errors.KindInvalid, "split needs an edge position")
		}
		if instr.Target != "" {
			t := e.groups[instr.Target]
			if t == nil {
				return errors.GroupNotFound(op, instr.Target)
			}
			if t.location != LocationGrid {
				return errors.E(op, errors.KindInvalid, fmt.Sprintf("group %q is not in the grid", t.id))
			}
			if src.WholeGroup() && src.Group == t.id {
				return errors.E(op, errors.KindInvalid, "a group cannot split itself")
			}
		}
	}
	return nil
}

// movePanelTo transfers p into target at index in one step.
func (e *Engine) movePanelTo(p *panelState, target *groupState, index int) {
	from := e.detachPanel(p)
	e.attach(p, target, index)
	target.active = p.id
	e.log.Debug("panel moved", "op", "move", "panel", p.id, "from", from.id, "to", target.id)
	ev := MoveEvent{Panel: p.id, From: from.id, To: target.id}
	e.queue(func() { e.movePanel.Emit(ev) })
	if len(from.panels) == 0 && from != target {
		e.deleteGroup(from)
	}
}

// mergeGroup moves every panel of src into target, keeping their order, and
// removes src.
func (e *Engine) mergeGroup(src, target *groupState, index int) {
	if index < 0 || index > len(target.panels) {
		index = len(target.panels)
	}
	active := src.active
	for i, pid := range slices.Clone(src.panels) {
		e.movePanelTo(e.panels[pid], target, index+i)
	}
	if active != "" {
		target.active = active
	}
}

// relocate puts a panel (in a new group) or a whole group at pl, which is a
// split, window edge, floating or popout placement, and returns the id of the
// group that ends up there.
func (e *Engine) relocate(src dnd.Source, pl placement) string {
	if src.WholeGroup() {
		g := e.groups[src.Group]
		e.detach(g)
		e.place(g, pl)
		e.setActiveGroup(g.id)
		return g.id
	}
	p := e.panels[src.Panel]
	from := e.groups[p.group]
	if len(from.panels) == 1 && pl.splitRef != from.id {
		// Moving the only panel: move the group itself and keep its id.
		e.detach(from)
		e.place(from, pl)
		e.setActiveGroup(from.id)
		return from.id
	}
	id := pl.id
	if id == "" {
		id = e.newGroupID()
	}
	g := e.createGroup(id, pl)
	e.movePanelTo(p, g, -1)
	e.setActiveGroup(g.id)
	return g.id
}

func (e *Engine) defaultFloatBox(at geom.Rect) geom.Rect {
	w, h := e.grid.Size()
	box := geom.Rect{X: at.X, Y: at.Y, Width: max(w/2, 20), Height: max(h/2, 6)}
	if w > 0 && box.X+box.Width > w {
		box.X = max(0, w-box.Width)
	}
	if h > 0 && box.Y+box.Height > h {
		box.Y = max(0, h-box.Height)
	}
	return box
}
