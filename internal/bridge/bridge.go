// Package bridge is the only point of contact between the docking engine and
// whatever renders panel content. The engine owns a Node per panel slot and
// asks a Bridge to mount a named component into it; the returned Handle
// forwards parameter updates and disposes the component.
package bridge

import (
	"workbench/internal/geom"
	"workbench/internal/layout"
)

// Slot names the part of a panel a node hosts.
type Slot string

const (
	SlotContent Slot = "content"
	SlotTab     Slot = "tab"
)

// Node is an engine-owned mount point. The engine keeps Group, Rect, Visible
// and Surface current as the panel moves; components read them when they
// render.
type Node struct {
	ID      string
	Panel   string
	Slot    Slot
	Group   string
	Rect    geom.Rect
	Visible bool

	// Surface is where output is actually drawn: "" for the main grid,
	// otherwise the floating overlay or popout window id. The node stays
	// logically owned by its group whatever the surface.
	Surface string
}

// Descriptor selects the component to mount.
type Descriptor struct {
	Component string
	Slot      Slot
}

// PanelAPI is the panel-scoped API handed to mounted content.
type PanelAPI interface {
	ID() string
	Title() string
	SetTitle(title string)
	Params() map[string]any
	UpdateParameters(params map[string]any)
	SetRenderer(r layout.Renderer)
	Focus()
	Close()
	IsActive() bool
	IsVisible() bool
}

// GroupAPI is the subset of the engine scoped to the panel's own group.
type GroupAPI interface {
	ID() string
	PanelIDs() []string
	ActivePanelID() string
	SetActivePanel(panelID string) bool
	MovePanel(panelID string, index int) bool
	Locked() bool
	SetLocked(locked bool)
	Close()
}

// Props are the initial inputs of a mounted component.
type Props struct {
	ID           string
	Params       map[string]any
	Title        string
	API          PanelAPI
	ContainerAPI GroupAPI
}

// Handle controls one mounted component. Update never remounts; Dispose is
// idempotent and safe while an Update is in flight.
type Handle interface {
	Update(params map[string]any)
	Dispose()
}

// Bridge mounts components into engine nodes.
type Bridge interface {
	Mount(node *Node, d Descriptor, props Props) (Handle, error)
}

// Nop mounts nothing. Headless tools use it to drive the engine without a
// renderer.
type Nop struct{}

func (Nop) Mount(*Node, Descriptor, Props) (Handle, error) { return nopHandle{}, nil }

type nopHandle struct{}

func (nopHandle) Update(map[string]any) {}
func (nopHandle) Dispose()              {}
