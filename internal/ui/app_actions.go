package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"workbench/internal/dock"
	"workbench/internal/errors"
	"workbench/internal/geom"
)

// do wraps an action that only reports an error.
func do(name string, fn func(a *AppModel) error) tea.Cmd {
	return doCmd(name, func(a *AppModel) (tea.Cmd, error) { return nil, fn(a) })
}

func doCmd(name string, fn func(a *AppModel) (tea.Cmd, error)) tea.Cmd {
	return func() tea.Msg { return actionMsg{name: name, fn: fn} }
}

func (a *AppModel) registerKeys(r *KeybindRegistry) {
	r.Bind("ctrl+c", "quit", tea.Quit)
	r.Bind("SPC q", "quit", tea.Quit)
	r.Bind("tab", "next group", do("focus", func(a *AppModel) error { a.cycleGroup(1); return nil }))
	r.Bind("shift+tab", "previous group", do("focus", func(a *AppModel) error { a.cycleGroup(-1); return nil }))
	for k, dir := range map[string]geom.Position{
		"alt+left": geom.Left, "alt+right": geom.Right, "alt+up": geom.Top, "alt+down": geom.Bottom,
	} {
		r.Bind(k, "focus "+string(dir), do("focus", func(a *AppModel) error { a.focusToward(dir); return nil }))
	}
	r.Bind("ctrl+p", "find panel", doCmd("switcher", (*AppModel).openSwitcher))

	r.Menu("SPC p", "Panel")
	r.Bind("SPC p n", "new text panel", do("new panel", (*AppModel).newTextPanel))
	r.Bind("SPC p i", "inspector", do("inspector", (*AppModel).newInspector))
	r.Bind("SPC p t", "traces", do("traces", (*AppModel).showTraces))
	r.Bind("SPC p c", "close", do("close panel", (*AppModel).closePanel))
	r.Bind("SPC p r", "remount", do("remount", (*AppModel).remountPanel))
	r.Bind("SPC p f", "float", do("float panel", (*AppModel).floatPanel))
	r.Bind("SPC p o", "popout", do("popout panel", (*AppModel).popoutPanel))
	r.Bind("SPC p s", "switcher", doCmd("switcher", (*AppModel).openSwitcher))

	r.Menu("SPC g", "Group")
	r.Bind("SPC g v", "split right", do("split", func(a *AppModel) error { return a.splitGroup(geom.Right) }))
	r.Bind("SPC g s", "split down", do("split", func(a *AppModel) error { return a.splitGroup(geom.Bottom) }))
	r.Bind("SPC g l", "toggle lock", do("lock", (*AppModel).toggleLock))
	r.Bind("SPC g h", "toggle header", do("header", (*AppModel).toggleHeader))
	r.Bind("SPC g c", "close", do("close group", (*AppModel).closeGroup))
	r.Bind("SPC g f", "float", do("float group", (*AppModel).floatGroup))
	r.Bind("SPC g d", "dock into grid", do("dock group", (*AppModel).dockGroup))

	r.Menu("SPC w", "Window")
	r.Bind("SPC w n", "next screen", do("screen", (*AppModel).nextScreen))
	r.Bind("SPC w p", "popout group", do("popout group", (*AppModel).popoutGroup))
	r.Bind("SPC w c", "close screen", do("close screen", (*AppModel).closeScreen), ModeScreen)
	r.Bind("SPC w x", "discard screen", doCmd("discard screen", (*AppModel).confirmDiscardScreen), ModeScreen)

	r.Menu("SPC l", "Layout")
	r.Bind("SPC l s", "save", do("save", (*AppModel).saveLayout))
	r.Bind("SPC l e", "export snapshot", do("export", (*AppModel).exportLayout))
	r.Bind("SPC l r", "reload saved", do("reload", (*AppModel).reloadLayout))
	r.Bind("SPC l c", "clear", doCmd("clear", (*AppModel).confirmClear))
	r.Bind("SPC l p", "prune windows", do("prune", (*AppModel).pruneWindows))
}

var errNoPanel = errors.E(errors.KindNotFound, "no active panel")

func screenRect(w, h int) geom.Rect { return geom.Rect{Width: w, Height: h} }

// floatBox is a centered box half the size of the layout.
func (a *AppModel) floatBox() geom.Rect {
	lw, lh := a.layoutSize()
	w, h := max(lw/2, 10), max(lh/2, 4)
	return geom.Rect{X: max((lw-w)/2, 0), Y: max((lh-h)/2, 0), Width: w, Height: h}
}

// groupOrder lists the groups the keyboard can reach on the current screen.
func (a *AppModel) groupOrder() []string {
	var ids []string
	for _, g := range a.engine.Groups() {
		if g.Location() != dock.LocationPopout {
			ids = append(ids, g.ID())
		}
	}
	return ids
}

func (a *AppModel) cycleGroup(d int) {
	if a.screen != "" {
		return
	}
	cur := ""
	if g := a.engine.ActiveGroup(); g != nil {
		cur = g.ID()
	}
	a.focus.Sync(a.groupOrder(), cur)
	var next string
	if d > 0 {
		next = a.focus.Next()
	} else {
		next = a.focus.Prev()
	}
	if next != "" {
		a.engine.SetActiveGroup(next)
	}
}

func (a *AppModel) focusToward(dir geom.Position) {
	if a.screen != "" {
		return
	}
	g := a.engine.ActiveGroup()
	if g == nil {
		return
	}
	order := a.groupOrder()
	rects := make(map[string]geom.Rect, len(order))
	for _, id := range order {
		rects[id] = a.engine.GetGroup(id).Rect()
	}
	a.focus.Sync(order, g.ID())
	if a.focus.Toward(dir, rects) {
		a.engine.SetActiveGroup(a.focus.Current)
	}
}

func (a *AppModel) openSwitcher() (tea.Cmd, error) {
	var items []SwitcherItem
	for _, g := range a.engine.Groups() {
		for _, p := range g.Panels() {
			title := p.Title()
			if title == "" {
				title = p.ID()
			}
			items = append(items, SwitcherItem{PanelID: p.ID(), Title: title, Group: g.ID()})
		}
	}
	return a.Overlays.Open(NewSwitcherModal(items)), nil
}

// addTo adds a panel beside the current group, or as a tab in it when dir is
// not an edge.
func (a *AppModel) addTo(opts dock.AddPanelOptions, dir geom.Position) error {
	if g := a.currentGroup(); g != nil {
		opts.Position = &dock.Position{Direction: dir, ReferenceGroup: g.ID()}
		if g.Location() != dock.LocationGrid && dir.IsEdge() {
			// Detached groups take new panels as tabs.
			opts.Position.Direction = ""
		}
	}
	_, err := a.engine.AddPanel(opts)
	return err
}

func (a *AppModel) newTextPanel() error {
	a.panelSeq++
	return a.addTo(dock.AddPanelOptions{
		ID:        "text-" + uuid.NewString()[:8],
		Component: ComponentText,
		Title:     fmt.Sprintf("untitled %d", a.panelSeq),
		Params:    map[string]any{"text": ""},
	}, "")
}

func (a *AppModel) newInspector() error {
	return a.addTo(dock.AddPanelOptions{
		ID:        "inspector-" + uuid.NewString()[:8],
		Component: ComponentInspector,
		Title:     "inspector",
	}, geom.Right)
}

// showTraces focuses the trace panel, creating it below the current group
// the first time.
func (a *AppModel) showTraces() error {
	const id = "traces"
	if p := a.engine.GetPanel(id); p != nil {
		a.focusPanel(id)
		return nil
	}
	return a.addTo(dock.AddPanelOptions{ID: id, Component: ComponentTrace, Title: "traces"}, geom.Bottom)
}

func (a *AppModel) addWelcome() error {
	_, err := a.engine.AddPanel(dock.AddPanelOptions{ID: "welcome", Component: ComponentWelcome, Title: "welcome"})
	return err
}

func (a *AppModel) closePanel() error {
	p := a.currentPanel()
	if p == nil {
		return errNoPanel
	}
	p.Close()
	return nil
}

func (a *AppModel) remountPanel() error {
	p := a.currentPanel()
	if p == nil {
		return errNoPanel
	}
	if err := p.Remount(); err != nil {
		return err
	}
	a.setStatus("remounted " + p.ID())
	return nil
}

func (a *AppModel) floatPanel() error {
	p := a.currentPanel()
	if p == nil {
		return errNoPanel
	}
	_, err := a.engine.AddFloatingGroup(dock.MoveSource{Panel: p.ID()}, a.floatBox())
	return err
}

func (a *AppModel) popout(src dock.MoveSource, title string) error {
	lw, lh := a.layoutSize()
	g, err := a.engine.AddPopoutGroup(src, dock.PopoutOptions{Box: screenRect(lw, lh), Title: title})
	if err != nil {
		return err
	}
	a.screen = g.Window()
	return nil
}

func (a *AppModel) popoutPanel() error {
	p := a.currentPanel()
	if p == nil {
		return errNoPanel
	}
	return a.popout(dock.MoveSource{Panel: p.ID()}, p.Title())
}

// splitGroup moves the active tab into a new group on side dir. A group
// with a single tab is split with a new empty text panel instead.
func (a *AppModel) splitGroup(dir geom.Position) error {
	g := a.currentGroup()
	if g == nil {
		return a.newTextPanel()
	}
	if len(g.PanelIDs()) > 1 && g.Location() == dock.LocationGrid {
		return a.engine.MoveGroupOrPanel(dock.MoveSource{Panel: g.ActivePanelID()}, dock.MoveTarget{Group: g.ID(), Position: dir})
	}
	a.panelSeq++
	return a.addTo(dock.AddPanelOptions{
		ID:        "text-" + uuid.NewString()[:8],
		Component: ComponentText,
		Title:     fmt.Sprintf("untitled %d", a.panelSeq),
	}, dir)
}

func (a *AppModel) toggleLock() error {
	g := a.currentGroup()
	if g == nil {
		return nil
	}
	g.SetLocked(!g.Locked())
	return nil
}

func (a *AppModel) toggleHeader() error {
	g := a.currentGroup()
	if g == nil {
		return nil
	}
	g.SetHideHeader(!g.HideHeader())
	return nil
}

func (a *AppModel) closeGroup() error {
	g := a.currentGroup()
	if g == nil {
		return nil
	}
	if g.Location() == dock.LocationPopout {
		return a.engine.ClosePopout(g.ID(), dock.Discard)
	}
	g.Close()
	return nil
}

func (a *AppModel) floatGroup() error {
	g := a.currentGroup()
	if g == nil || g.Location() != dock.LocationGrid {
		return nil
	}
	_, err := a.engine.AddFloatingGroup(dock.MoveSource{Group: g.ID()}, a.floatBox())
	return err
}

// dockGroup returns a floating or popout group to the grid.
func (a *AppModel) dockGroup() error {
	g := a.currentGroup()
	if g == nil {
		return nil
	}
	switch g.Location() {
	case dock.LocationPopout:
		a.screen = ""
		return a.engine.ClosePopout(g.ID(), dock.Redock)
	case dock.LocationFloating:
		return a.engine.MoveGroupOrPanel(dock.MoveSource{Group: g.ID()}, dock.MoveTarget{Position: geom.Right})
	}
	return nil
}

func (a *AppModel) nextScreen() error {
	if a.opts.Screens == nil {
		return nil
	}
	a.screen = a.opts.Screens.Cycle(a.screen)
	return nil
}

func (a *AppModel) popoutGroup() error {
	g := a.currentGroup()
	if g == nil || g.Location() == dock.LocationPopout {
		return nil
	}
	title := g.ID()
	if p := a.engine.GetPanel(g.ActivePanelID()); p != nil {
		title = p.Title()
	}
	return a.popout(dock.MoveSource{Group: g.ID()}, title)
}

// closeScreen closes the popout on display the way a window manager would:
// the host drops the window and the engine applies its close policy.
func (a *AppModel) closeScreen() error {
	if a.screen == "" {
		return nil
	}
	id := a.screen
	if a.opts.Screens != nil {
		a.opts.Screens.Dismiss(id)
	}
	a.engine.WindowClosed(id)
	a.screen = ""
	return nil
}

func (a *AppModel) confirmDiscardScreen() (tea.Cmd, error) {
	g := a.currentGroup()
	if a.screen == "" || g == nil {
		return nil, nil
	}
	id := g.ID()
	discard := actionMsg{name: "discard screen", fn: func(a *AppModel) (tea.Cmd, error) {
		a.screen = ""
		return nil, a.engine.ClosePopout(id, dock.Discard)
	}}
	q := fmt.Sprintf("Close %d panel(s) in this screen?", len(g.PanelIDs()))
	return a.Overlays.Open(newConfirm("Discard screen", q, discard, g.PanelIDs()...)), nil
}

func (a *AppModel) saveLayout() error {
	if a.opts.Saver == nil {
		return errors.E(errors.KindConfig, "no store configured")
	}
	if err := a.opts.Saver.Save(context.Background()); err != nil {
		return err
	}
	a.setStatus("saved " + a.opts.Workspace)
	return nil
}

func (a *AppModel) exportLayout() error {
	if a.opts.Snapshots == nil {
		return errors.E(errors.KindConfig, "no snapshot directory configured")
	}
	name := a.opts.Workspace + "-" + time.Now().Format("20060102-150405")
	path, err := a.opts.Snapshots.Save(name, a.engine.ToJSON())
	if err != nil {
		return err
	}
	a.setStatus("exported " + path)
	return nil
}

func (a *AppModel) reloadLayout() error {
	if a.opts.Saver == nil {
		return errors.E(errors.KindConfig, "no store configured")
	}
	a.screen = ""
	found, err := a.opts.Saver.Restore(context.Background())
	if err != nil {
		return err
	}
	if !found {
		a.setStatus("no saved layout for " + a.opts.Workspace)
		return nil
	}
	a.fitPopouts()
	a.setStatus("reloaded " + a.opts.Workspace)
	return nil
}

func (a *AppModel) confirmClear() (tea.Cmd, error) {
	wipe := actionMsg{name: "clear", fn: func(a *AppModel) (tea.Cmd, error) {
		a.screen = ""
		a.engine.Clear()
		return nil, a.addWelcome()
	}}
	q := fmt.Sprintf("Close all %d panels?", len(a.engine.Panels()))
	return a.Overlays.Open(newConfirm("Clear layout", q, wipe)), nil
}

func (a *AppModel) pruneWindows() error {
	n, err := a.engine.PruneWindows()
	if err != nil {
		return err
	}
	a.setStatus(fmt.Sprintf("pruned %d window(s)", n))
	return nil
}
