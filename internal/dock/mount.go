package dock

import (
	"maps"

	"workbench/internal/bridge"
	"workbench/internal/geom"
	"workbench/internal/layout"
)

func (e *Engine) newNodes(p *panelState) {
	p.node = &bridge.Node{ID: p.id + "/content", Panel: p.id, Slot: bridge.SlotContent}
	if p.tabComponent != "" {
		p.tabNode = &bridge.Node{ID: p.id + "/tab", Panel: p.id, Slot: bridge.SlotTab}
	}
}

// syncNodes brings every node's group, rectangle, visibility and surface up
// to date.
func (e *Engine) syncNodes() {
	for _, g := range e.orderedGroups() {
		content := e.contentRect(g)
		tabs := e.tabRects(g)
		surface := ""
		switch g.location {
		case LocationFloating:
			surface = "floating:" + g.id
		case LocationPopout:
			surface = g.window
		}
		for i, pid := range g.panels {
			p := e.panels[pid]
			p.node.Group = g.id
			p.node.Rect = content
			p.node.Visible = g.active == pid
			p.node.Surface = surface
			if p.tabNode != nil {
				p.tabNode.Group = g.id
				p.tabNode.Visible = !g.hideHeader
				p.tabNode.Surface = surface
				if i < len(tabs) {
					p.tabNode.Rect = tabs[i]
				}
			}
		}
	}
}

// syncMounts mounts content that should be mounted and disposes content that
// should not, per renderer mode. It returns the first new mount failure.
func (e *Engine) syncMounts() error {
	e.syncNodes()
	var first error
	for _, g := range e.orderedGroups() {
		for _, pid := range g.panels {
			p := e.panels[pid]
			want := p.renderer == layout.Always || g.active == pid
			switch {
			case want && p.handle == nil && p.mountErr == nil:
				if err := e.mount(p); err != nil && first == nil {
					first = err
				}
			case !want && p.handle != nil:
				p.handle.Dispose()
				p.handle = nil
				e.log.Debug("content disposed", "op", "syncMounts", "panel", p.id)
			case !want:
				p.mountErr = nil
			}
			if p.tabNode != nil && p.tabHandle == nil && p.tabMountErr == nil {
				if err := e.mountTab(p); err != nil && first == nil {
					first = err
				}
			}
		}
	}
	return first
}

func (e *Engine) props(p *panelState) bridge.Props {
	return bridge.Props{
		ID:           p.id,
		Params:       maps.Clone(p.params),
		Title:        p.title,
		API:          e.panelHandle(p.id),
		ContainerAPI: containerAPI{e: e, panel: p.id},
	}
}

func (e *Engine) mount(p *panelState) error {
	h, err := e.opts.Bridge.Mount(p.node, bridge.Descriptor{Component: p.component, Slot: bridge.SlotContent}, e.props(p))
	if err != nil {
		p.mountErr = &MountError{Panel: p.id, Component: p.component, Err: err}
		e.log.Warn("mount failed", "panel", p.id, "component", p.component, "error", err)
		return p.mountErr
	}
	p.handle = h
	e.log.Debug("content mounted", "panel", p.id, "component", p.component)
	return nil
}

func (e *Engine) mountTab(p *panelState) error {
	h, err := e.opts.Bridge.Mount(p.tabNode, bridge.Descriptor{Component: p.tabComponent, Slot: bridge.SlotTab}, e.props(p))
	if err != nil {
		p.tabMountErr = &MountError{Panel: p.id, Component: p.tabComponent, Err: err}
		e.log.Warn("tab mount failed", "panel", p.id, "component", p.tabComponent, "error", err)
		return p.tabMountErr
	}
	p.tabHandle = h
	return nil
}

func (e *Engine) unmount(p *panelState) {
	if p.handle != nil {
		p.handle.Dispose()
		p.handle = nil
	}
	if p.tabHandle != nil {
		p.tabHandle.Dispose()
		p.tabHandle = nil
	}
	p.mountErr, p.tabMountErr = nil, nil
}

// GroupRect returns a group's rectangle on its own surface: the grid for grid
// groups, the main window for floating groups and the popout window (origin
// at 0,0) for popouts.
func (e *Engine) GroupRect(id string) (geom.Rect, bool) {
	g := e.groups[id]
	if g == nil {
		return geom.Rect{}, false
	}
	return e.groupRect(g), true
}

func (e *Engine) groupRect(g *groupState) geom.Rect {
	switch g.location {
	case LocationFloating:
		return g.box
	case LocationPopout:
		return geom.Rect{Width: g.box.Width, Height: g.box.Height}
	}
	r, _ := e.grid.Rect(g.id)
	return r
}

func (e *Engine) headerHeight(g *groupState) int {
	if g.hideHeader {
		return 0
	}
	return e.opts.HeaderHeight
}

// ContentRect returns the part of a group's rectangle below its tab strip.
func (e *Engine) ContentRect(id string) (geom.Rect, bool) {
	g := e.groups[id]
	if g == nil {
		return geom.Rect{}, false
	}
	return e.contentRect(g), true
}

func (e *Engine) contentRect(g *groupState) geom.Rect {
	r := e.groupRect(g)
	h := min(e.headerHeight(g), r.Height)
	r.Y += h
	r.Height -= h
	return r
}

// TabRects returns the rectangle of each tab in a group's strip, clipped to
// the group width. Tabs that do not fit get empty rectangles.
func (e *Engine) TabRects(id string) []geom.Rect {
	g := e.groups[id]
	if g == nil {
		return nil
	}
	return e.tabRects(g)
}

func (e *Engine) tabRects(g *groupState) []geom.Rect {
	r := e.groupRect(g)
	h := min(e.headerHeight(g), r.Height)
	out := make([]geom.Rect, len(g.panels))
	if h == 0 {
		return out
	}
	x, right := r.X, r.X+r.Width
	for i, pid := range g.panels {
		p := e.panels[pid]
		title := p.title
		if title == "" {
			title = p.id
		}
		w := min(e.opts.TabWidth(title), right-x)
		if w <= 0 {
			out[i] = geom.Rect{X: right, Y: r.Y, Height: h}
			continue
		}
		out[i] = geom.Rect{X: x, Y: r.Y, Width: w, Height: h}
		x += w
	}
	return out
}
