package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"workbench/internal/bridge"
)

// Content is panel content rendered by the TUI.
type Content interface {
	// SetParams receives the panel's params whenever they change.
	SetParams(params map[string]any)
	// Update handles input while the panel is focused.
	Update(msg tea.Msg) tea.Cmd
	// View renders the content into width x height cells.
	View(width, height int) string
	// Close releases resources when the content is unmounted.
	Close()
}

// ContentFactory builds content for a mounted node.
type ContentFactory func(props bridge.Props) (Content, error)

// TeaBridge implements bridge.Bridge for the TUI. Mounted content is
// indexed by node id so the renderer can find what to draw in each node.
type TeaBridge struct {
	reg *bridge.Registry

	mu   sync.RWMutex
	live map[string]*mounted
}

var _ bridge.Bridge = (*TeaBridge)(nil)

// NewTeaBridge returns a bridge with no components registered. Unknown
// component names mount a placeholder.
func NewTeaBridge() *TeaBridge {
	b := &TeaBridge{reg: bridge.NewRegistry(), live: make(map[string]*mounted)}
	b.reg.SetFallback(b.wrap(func(props bridge.Props) (Content, error) {
		return newPlaceholder(props), nil
	}))
	return b
}

// Register adds a named component.
func (b *TeaBridge) Register(name string, f ContentFactory) {
	b.reg.Register(name, b.wrap(f))
}

// Components lists registered component names.
func (b *TeaBridge) Components() []string { return b.reg.Names() }

func (b *TeaBridge) wrap(f ContentFactory) bridge.Factory {
	return func(node *bridge.Node, props bridge.Props) (bridge.Component, error) {
		c, err := f(props)
		if err != nil {
			return nil, err
		}
		c.SetParams(props.Params)
		m := &mounted{bridge: b, node: node, content: c}
		b.mu.Lock()
		b.live[node.ID] = m
		b.mu.Unlock()
		return m, nil
	}
}

// Mount implements bridge.Bridge.
func (b *TeaBridge) Mount(node *bridge.Node, d bridge.Descriptor, props bridge.Props) (bridge.Handle, error) {
	return b.reg.Mount(node, d, props)
}

// Content returns the live content of a node.
func (b *TeaBridge) Content(nodeID string) (Content, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.live[nodeID]
	if !ok {
		return nil, false
	}
	return m.content, true
}

// Live returns the number of mounted nodes.
func (b *TeaBridge) Live() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.live)
}

type mounted struct {
	bridge  *TeaBridge
	node    *bridge.Node
	content Content
}

func (m *mounted) Update(params map[string]any) { m.content.SetParams(params) }

func (m *mounted) Dispose() {
	m.bridge.mu.Lock()
	if m.bridge.live[m.node.ID] == m {
		delete(m.bridge.live, m.node.ID)
	}
	m.bridge.mu.Unlock()
	m.content.Close()
}
