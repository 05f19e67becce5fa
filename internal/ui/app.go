package ui

import (
	"context"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"workbench/internal/dnd"
	"workbench/internal/dock"
	"workbench/internal/persist"
	"workbench/internal/snapshot"
	"workbench/internal/trace"
)

// Options wire the app to the engine and its collaborators. Only Engine and
// Bridge are required.
type Options struct {
	Engine    *dock.Engine
	Bridge    *TeaBridge
	Screens   *ScreenHost
	Saver     *persist.Saver
	Snapshots *snapshot.Store
	Recorder  *trace.Recorder
	Logger    *slog.Logger

	Workspace        string
	AutosaveInterval time.Duration

	// Keys receives the default bindings. Pass the registry the welcome
	// component was built with so it lists them.
	Keys *KeybindRegistry
}

// actionMsg runs a keybind action against the app.
type actionMsg struct {
	name string
	fn   func(a *AppModel) (tea.Cmd, error)
}

// autosaveMsg triggers a flush of unsaved layout changes.
type autosaveMsg struct{}

// AppModel is the root model: the docked layout drawn in the terminal, the
// popout screens, overlays and the status bar.
type AppModel struct {
	opts   Options
	engine *dock.Engine
	log    *slog.Logger

	KeyHandler *KeyHandler
	Overlays   OverlayStack
	focus      FocusManager
	dnd        *dnd.Controller
	pointer    pointer

	width, height int
	// screen is the popout window on display; "" shows the main layout.
	screen string

	status    string
	statusErr bool
	panelSeq  int
}

// Ensure AppModel can be used as tea.Model via adapter.
var _ tea.Model = (*appModelAdapter)(nil)

// appModelAdapter wraps AppModel to implement tea.Model.
type appModelAdapter struct {
	*AppModel
}

// Init implements tea.Model.
func (a *appModelAdapter) Init() tea.Cmd {
	return a.autosaveTick()
}

// Update implements tea.Model.
func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.syncScreen()
	return a, cmd
}

// View implements tea.Model.
func (a *appModelAdapter) View() string {
	return a.render()
}

// NewAppModel creates the root application model. An empty workbench gets a
// welcome panel.
func NewAppModel(opts Options) *AppModel {
	if opts.Keys == nil {
		opts.Keys = NewKeybindRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workspace == "" {
		opts.Workspace = "default"
	}
	a := &AppModel{
		opts:       opts,
		engine:     opts.Engine,
		log:        opts.Logger,
		KeyHandler: NewKeyHandler(opts.Keys),
		dnd:        dnd.NewController(dnd.Env{AllowFloat: true, FloatWidth: 40, FloatHeight: 12}),
	}
	a.registerKeys(opts.Keys)
	if len(a.engine.Panels()) == 0 {
		if err := a.addWelcome(); err != nil {
			a.setError("welcome", err)
		}
	}
	return a
}

// AsTeaModel returns the tea.Model to run.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// Shutdown flushes unsaved layout changes.
func (a *AppModel) Shutdown(ctx context.Context) error {
	if a.opts.Saver == nil {
		return nil
	}
	return a.opts.Saver.Close(ctx)
}

// Screen returns the popout window on display, or "" for the main layout.
func (a *AppModel) Screen() string { return a.screen }

// Status returns the status bar message and whether it reports an error.
func (a *AppModel) Status() (string, bool) { return a.status, a.statusErr }

func (a *AppModel) mode() Mode {
	if a.screen != "" {
		return ModeScreen
	}
	return ModeLayout
}

func (a *AppModel) windowID() string {
	if a.screen != "" {
		return a.screen
	}
	return dock.MainWindow
}

func (a *AppModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.MouseMsg:
		return a.handleMouse(msg)
	case actionMsg:
		cmd, err := msg.fn(a)
		if err != nil {
			a.setError(msg.name, err)
		}
		return cmd
	case FocusPanelMsg:
		a.focusPanel(msg.ID)
		return nil
	case closeModalMsg:
		a.Overlays.Close()
		return nil
	case autosaveMsg:
		if err := a.opts.Saver.Flush(context.Background()); err != nil {
			a.setError("autosave", err)
		}
		return a.autosaveTick()
	}
	// Blink and other component messages belong to the top overlay.
	if cmd, ok := a.Overlays.Update(msg); ok {
		return cmd
	}
	return nil
}

func (a *AppModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if cmd, ok := a.Overlays.Update(msg); ok {
		return cmd
	}
	if msg.String() == "esc" && a.pointer.kind != pointerIdle {
		a.cancelPointer()
		return nil
	}
	if consumed, cmd := a.KeyHandler.Handle(msg, a.mode()); consumed {
		return cmd
	}
	if c, ok := a.focusedContent(); ok {
		return c.Update(msg)
	}
	return nil
}

func (a *AppModel) autosaveTick() tea.Cmd {
	if a.opts.Saver == nil || a.opts.AutosaveInterval <= 0 {
		return nil
	}
	return tea.Tick(a.opts.AutosaveInterval, func(time.Time) tea.Msg { return autosaveMsg{} })
}

// resize lays the engine out above the status bar and stretches popout
// groups over the whole screen they are shown on.
func (a *AppModel) resize(w, h int) {
	a.width, a.height = w, h
	lw, lh := a.layoutSize()
	a.engine.Layout(lw, lh)
	a.fitPopouts()
	a.dnd = dnd.NewController(dnd.Env{AllowFloat: true, FloatWidth: max(lw/2, 10), FloatHeight: max(lh/2, 4)})
	a.pointer = pointer{}
}

func (a *AppModel) layoutSize() (int, int) {
	return max(a.width, 0), max(a.height-1, 0)
}

func (a *AppModel) fitPopouts() {
	lw, lh := a.layoutSize()
	if lw == 0 || lh == 0 {
		return
	}
	full := screenRect(lw, lh)
	for _, g := range a.engine.PopoutGroups() {
		if g.Rect() != full {
			a.engine.SetFloatingRect(g.ID(), full)
		}
	}
}

// syncScreen falls back to the main layout when the popout on display has
// gone, for example after its last tab was dragged away.
func (a *AppModel) syncScreen() {
	if a.screen != "" && a.popoutFor(a.screen) == nil {
		a.screen = ""
	}
}

func (a *AppModel) popoutFor(windowID string) *dock.Group {
	for _, g := range a.engine.PopoutGroups() {
		if g.Window() == windowID {
			return g
		}
	}
	return nil
}

// currentGroup is the group keyboard commands act on.
func (a *AppModel) currentGroup() *dock.Group {
	if a.screen != "" {
		return a.popoutFor(a.screen)
	}
	return a.engine.ActiveGroup()
}

func (a *AppModel) currentPanel() *dock.Panel {
	g := a.currentGroup()
	if g == nil {
		return nil
	}
	return a.engine.GetPanel(g.ActivePanelID())
}

func (a *AppModel) focusedContent() (Content, bool) {
	p := a.currentPanel()
	if p == nil || a.opts.Bridge == nil {
		return nil, false
	}
	node := p.Node()
	if node == nil {
		return nil, false
	}
	return a.opts.Bridge.Content(node.ID)
}

// focusPanel activates a panel and shows the screen it lives on.
func (a *AppModel) focusPanel(id string) {
	p := a.engine.GetPanel(id)
	if p == nil {
		a.setStatus("panel " + id + " is gone")
		return
	}
	p.Focus()
	g := p.Group()
	switch g.Location() {
	case dock.LocationPopout:
		a.screen = g.Window()
	case dock.LocationFloating:
		a.engine.RaiseFloating(g.ID())
		a.screen = ""
	default:
		a.screen = ""
	}
}

func (a *AppModel) setStatus(s string) {
	a.status, a.statusErr = s, false
}

func (a *AppModel) setError(action string, err error) {
	a.log.Error("action failed", "action", action, "error", err)
	a.status, a.statusErr = action+": "+err.Error(), true
}
