// Package dock is the docking engine: it owns the grid of tab groups, the
// panel registry, floating and popout groups, and the serialized form of all
// of it. Callers interact through Engine methods and the id-backed Panel and
// Group handles it returns; the engine never hands out its internal state.
//
// An Engine is single-threaded. Every operation runs to completion, then
// listeners are called in order. Drive it from one goroutine (the bubbletea
// update loop in the workbench).
package dock

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"workbench/internal/bridge"
	"workbench/internal/dnd"
	"workbench/internal/event"
	"workbench/internal/grid"
	"workbench/internal/layout"
	"workbench/internal/window"
)

// ClosePolicy decides what happens to the panels of a popout whose window
// closes.
type ClosePolicy int

const (
	// Discard removes the group and every panel in it.
	Discard ClosePolicy = iota
	// Redock moves the group back into the grid beside its reference group.
	Redock
)

// Options configure an Engine. Zero values select the defaults.
type Options struct {
	Bridge bridge.Bridge
	Logger *slog.Logger
	Tracer trace.Tracer

	// Orientation of the root branch of an empty grid.
	Orientation grid.Orientation
	// SplitRatio is the share of the target's weight given to a group created
	// by an edge drop. Default 0.5.
	SplitRatio float64
	// Thresholds size the edge strips used by HitTest.
	Thresholds dnd.Thresholds
	// HeaderHeight is the height of a group's tab strip. Default 1.
	HeaderHeight int
	// DefaultRenderer applies to panels created without a renderer.
	DefaultRenderer layout.Renderer
	// TabWidth measures a tab for hit testing. Default: title length + 2.
	TabWidth func(title string) int

	// WindowHost opens popout windows. Without one, popouts are tracked
	// under virtual window ids.
	WindowHost window.Host
	// Liveness reports which popout windows are still open.
	Liveness window.LivenessChecker
	// PopoutClosePolicy applies to windows found closed by PruneWindows or
	// reported through WindowClosed.
	PopoutClosePolicy ClosePolicy

	// GroupID generates group ids. Default: "1", "2", ...
	GroupID func() string
}

func (o Options) withDefaults() Options {
	if o.Bridge == nil {
		o.Bridge = bridge.Nop{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("workbench/dock")
	}
	if o.SplitRatio <= 0 || o.SplitRatio >= 1 {
		o.SplitRatio = 0.5
	}
	if o.Thresholds == (dnd.Thresholds{}) {
		o.Thresholds = dnd.DefaultThresholds()
	}
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = 1
	}
	if !o.DefaultRenderer.Valid() || o.DefaultRenderer == "" {
		o.DefaultRenderer = layout.OnlyWhenVisible
	}
	if o.TabWidth == nil {
		o.TabWidth = func(title string) int { return len([]rune(title)) + 2 }
	}
	return o
}

// Engine is the docking layout engine.
type Engine struct {
	opts   Options
	log    *slog.Logger
	tracer trace.Tracer

	grid     *grid.Grid
	panels   map[string]*panelState
	groups   map[string]*groupState
	floating []string // floating group ids in creation order
	popouts  []string // popout group ids in creation order
	windows  *window.Tracker

	activeGroup string
	mru         []string // group ids, most recently active first
	nextGroup   int

	pending     []func()
	layoutDirty bool
	flushing    bool
	seenGroup   string
	seenPanel   string

	addPanel      event.Emitter[PanelEvent]
	removePanel   event.Emitter[PanelEvent]
	movePanel     event.Emitter[MoveEvent]
	activePanel   event.Emitter[ActivePanelEvent]
	activeGroupCh event.Emitter[ActiveGroupEvent]
	titleChange   event.Emitter[TitleEvent]
	addGroup      event.Emitter[GroupEvent]
	removeGroup   event.Emitter[GroupEvent]
	layoutChange  event.Emitter[LayoutEvent]
}

// New returns an engine with an empty grid.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts:    opts,
		log:     opts.Logger,
		tracer:  opts.Tracer,
		panels:  make(map[string]*panelState),
		groups:  make(map[string]*groupState),
		windows: window.New(opts.Liveness),
	}
	e.grid = grid.New(opts.Orientation, e.groupConstraints)
	onPanic := func(r any) { e.log.Error("listener panicked", "recovered", r) }
	e.addPanel.OnPanic = onPanic
	e.removePanel.OnPanic = onPanic
	e.movePanel.OnPanic = onPanic
	e.activePanel.OnPanic = onPanic
	e.activeGroupCh.OnPanic = onPanic
	e.titleChange.OnPanic = onPanic
	e.addGroup.OnPanic = onPanic
	e.removeGroup.OnPanic = onPanic
	e.layoutChange.OnPanic = onPanic
	return e
}

// span starts a span for a public operation.
func (e *Engine) span(name string, attrs ...attribute.KeyValue) trace.Span {
	_, s := e.tracer.Start(context.Background(), name, trace.WithAttributes(attrs...))
	return s
}

func endSpan(s trace.Span, err error) {
	if err != nil {
		s.RecordError(err)
		s.SetStatus(codes.Error, err.Error())
	}
	s.End()
}

func panelAttr(id string) attribute.KeyValue { return attribute.String("workbench.panel.id", id) }
func groupAttr(id string) attribute.KeyValue { return attribute.String("workbench.group.id", id) }

func (e *Engine) newGroupID() string {
	for {
		var id string
		if e.opts.GroupID != nil {
			id = e.opts.GroupID()
		} else {
			e.nextGroup++
			id = strconv.Itoa(e.nextGroup)
		}
		if _, used := e.groups[id]; !used && id != "" {
			return id
		}
	}
}

// Layout sets the container size of the main grid.
func (e *Engine) Layout(width, height int) {
	defer e.flush()
	w, h := e.grid.Size()
	if w == width && h == height {
		return
	}
	e.grid.Layout(width, height)
	e.syncNodes()
	e.changed()
}

// Size returns the container size of the main grid.
func (e *Engine) Size() (width, height int) { return e.grid.Size() }

// Orientation returns the root orientation of the grid.
func (e *Engine) Orientation() grid.Orientation { return e.grid.Orientation() }

// Options returns the engine's effective options.
func (e *Engine) Options() Options { return e.opts }

// Clear removes every panel and group, disposing mounted content. The grid is
// left empty.
func (e *Engine) Clear() {
	s := e.span("dock.Clear")
	defer endSpan(s, nil)
	defer e.flush()
	e.teardown()
	e.changed()
}

// Dispose clears the engine and drops every listener.
func (e *Engine) Dispose() {
	e.Clear()
	e.clearListeners()
}

// teardown removes all state, queueing remove events and closing windows.
func (e *Engine) teardown() {
	for _, g := range e.orderedGroups() {
		for _, pid := range g.panels {
			p := e.panels[pid]
			e.unmount(p)
			ev := PanelEvent{Panel: pid, Group: g.id}
			e.queue(func() { e.removePanel.Emit(ev) })
		}
		if g.location == LocationPopout {
			e.closeWindow(g)
		}
		ev := GroupEvent{Group: g.id, Location: g.location}
		e.queue(func() { e.removeGroup.Emit(ev) })
	}
	e.panels = make(map[string]*panelState)
	e.groups = make(map[string]*groupState)
	e.floating = nil
	e.popouts = nil
	e.activeGroup = ""
	e.mru = nil
	e.grid.Clear(e.grid.Orientation())
}
