package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"workbench/internal/dnd"
	"workbench/internal/dock"
	"workbench/internal/geom"
	"workbench/internal/grid"
	"workbench/internal/ui/textutil"
)

func (a *AppModel) render() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}
	c := newCanvas(a.width, a.height)

	if g := a.popoutFor(a.screen); a.screen != "" && g != nil {
		a.drawGroup(c, g, true)
	} else {
		for _, g := range a.engine.Groups() {
			if g.Location() == dock.LocationGrid {
				a.drawGroup(c, g, g.IsActive())
			}
		}
		a.drawSashes(c)
		for _, g := range a.engine.FloatingGroups() {
			a.drawGroup(c, g, g.IsActive())
		}
	}
	if a.pointer.kind == pointerDragging {
		a.drawPreview(c, a.dnd.Preview())
	}

	if a.KeyHandler.LeaderWaiting {
		help := RenderKeybindHelp(a.KeyHandler, a.mode(), a.width)
		c.draw(0, a.height-1-lipgloss.Height(help), help)
	}
	c.drawLine(0, a.height-1, a.statusBar())

	for _, v := range a.Overlays.Views() {
		c.draw((a.width-lipgloss.Width(v))/2, (a.height-lipgloss.Height(v))/2, v)
	}
	return c.String()
}

func (a *AppModel) drawGroup(c *canvas, g *dock.Group, focused bool) {
	r := g.Rect()
	if !g.HideHeader() {
		a.drawTabs(c, g, r, focused)
	}
	cr, ok := a.engine.ContentRect(g.ID())
	if !ok {
		return
	}
	c.drawRect(cr, a.body(g, cr))
}

func (a *AppModel) body(g *dock.Group, cr geom.Rect) string {
	p := a.engine.GetPanel(g.ActivePanelID())
	if p == nil {
		return Styles.Empty.Render("empty group")
	}
	if err := p.MountErr(); err != nil {
		return Styles.TitleWarning.Render("failed to mount "+p.Component()) + "\n" + Styles.Muted.Render(err.Error())
	}
	if node := p.Node(); node != nil && a.opts.Bridge != nil {
		if content, ok := a.opts.Bridge.Content(node.ID); ok {
			return content.View(cr.Width, cr.Height)
		}
	}
	return Styles.Empty.Render("not mounted")
}

func (a *AppModel) drawTabs(c *canvas, g *dock.Group, r geom.Rect, focused bool) {
	strip := Styles.TabStrip
	if g.Location() == dock.LocationFloating {
		strip = strip.Background(Styles.FloatingBorder)
	}
	c.drawLine(r.X, r.Y, strip.Render(strings.Repeat(" ", r.Width)))

	panels := g.Panels()
	active := g.ActivePanelID()
	for i, tr := range a.engine.TabRects(g.ID()) {
		if i >= len(panels) {
			break
		}
		p := panels[i]
		style := Styles.Tab
		if p.ID() == active {
			style = Styles.TabActive
			if focused {
				style = Styles.TabFocused
			}
		}
		c.drawLine(tr.X, tr.Y, style.Render(a.tabLabel(p, tr.Width)))
	}

	if g.Locked() && r.Width > 10 {
		c.drawLine(r.X+r.Width-8, r.Y, Styles.TabLocked.Render(" locked "))
	}
}

// tabLabel renders a panel's tab, using its tab component when one is
// mounted.
func (a *AppModel) tabLabel(p *dock.Panel, width int) string {
	if node := p.TabNode(); node != nil && a.opts.Bridge != nil {
		if content, ok := a.opts.Bridge.Content(node.ID); ok {
			return textutil.Fit(content.View(width, 1), width)
		}
	}
	title := p.Title()
	if title == "" {
		title = p.ID()
	}
	return textutil.Center(title, width)
}

func (a *AppModel) drawSashes(c *canvas) {
	for _, s := range a.engine.Sashes() {
		r := s.Rect
		if s.Orientation == grid.Horizontal {
			for y := r.Y; y < r.Y+r.Height; y++ {
				c.drawLine(r.X, y, Styles.Sash.Render("│"))
			}
			continue
		}
		c.drawLine(r.X, r.Y, Styles.Sash.Render(strings.Repeat("─", r.Width)))
	}
}

// drawPreview outlines where the dragged item would land.
func (a *AppModel) drawPreview(c *canvas, instr dnd.Instruction) {
	switch instr.Kind {
	case dnd.Split:
		cr, ok := a.engine.ContentRect(instr.Target)
		if !ok {
			return
		}
		frame(c, half(cr, instr.Position), Styles.DropIndicator)
	case dnd.Merge, dnd.Reorder:
		if instr.Index < 0 {
			if cr, ok := a.engine.ContentRect(instr.Target); ok {
				frame(c, cr, Styles.DropIndicator)
			}
			return
		}
		tabs := a.engine.TabRects(instr.Target)
		gr, ok := a.engine.GroupRect(instr.Target)
		if !ok {
			return
		}
		x := gr.X
		switch {
		case instr.Index < len(tabs):
			x = tabs[instr.Index].X
		case len(tabs) > 0:
			last := tabs[len(tabs)-1]
			x = last.X + last.Width
		}
		c.drawLine(x, gr.Y, Styles.DropInsert.Render("▏"))
	case dnd.Float:
		frame(c, a.clampBox(instr.Box), Styles.DropIndicator)
	}
}

// half returns the side of r a split on pos would give the new group.
func half(r geom.Rect, pos geom.Position) geom.Rect {
	switch pos {
	case geom.Left:
		r.Width /= 2
	case geom.Right:
		w := r.Width / 2
		r.X += r.Width - w
		r.Width = w
	case geom.Top:
		r.Height /= 2
	case geom.Bottom:
		h := r.Height / 2
		r.Y += r.Height - h
		r.Height = h
	}
	return r
}

// frame draws a box outline on r, leaving its inside untouched.
func frame(c *canvas, r geom.Rect, style lipgloss.Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	inner := strings.Repeat("─", r.Width-2)
	c.drawLine(r.X, r.Y, style.Render("┌"+inner+"┐"))
	for y := r.Y + 1; y < r.Y+r.Height-1; y++ {
		c.drawLine(r.X, y, style.Render("│"))
		c.drawLine(r.X+r.Width-1, y, style.Render("│"))
	}
	c.drawLine(r.X, r.Y+r.Height-1, style.Render("└"+inner+"┘"))
}

func (a *AppModel) statusBar() string {
	left := Styles.StatusWorkspace.Render(a.opts.Workspace)
	if a.screen != "" {
		title := a.screen
		if s, ok := a.screenInfo(); ok && s.Title != "" {
			title = s.Title
		}
		left += Styles.StatusBar.Render(" screen " + title + " ")
	}
	if a.status != "" {
		style := Styles.StatusBar
		if a.statusErr {
			style = Styles.StatusError
		}
		left += style.Render(" " + a.status)
	}

	right := fmt.Sprintf("%d groups · %d panels ", len(a.engine.Groups()), len(a.engine.Panels()))
	if a.opts.Saver != nil && a.opts.Saver.Dirty() {
		right = "● " + right
	}
	gap := a.width - ansi.StringWidth(left) - textutil.Width(right)
	if gap < 1 {
		return textutil.Fit(left, a.width)
	}
	return left + Styles.StatusBar.Render(strings.Repeat(" ", gap)+right)
}

func (a *AppModel) screenInfo() (Screen, bool) {
	if a.opts.Screens == nil {
		return Screen{}, false
	}
	return a.opts.Screens.Get(a.screen)
}
