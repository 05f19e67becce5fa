package ui

import (
	"fmt"
	"slices"
	"sync"

	"workbench/internal/window"
)

// Screen is a popout window shown by the TUI as a full-screen view the user
// can switch to.
type Screen struct {
	ID      string
	GroupID string
	Title   string
	Box     window.Box
}

// ScreenHost implements window.Host with alternate screens. Only one screen
// is visible at a time; the main layout is the implicit first screen.
type ScreenHost struct {
	mu      sync.Mutex
	next    int
	screens []Screen
}

var _ window.Host = (*ScreenHost)(nil)

// NewScreenHost returns a host with no popout screens.
func NewScreenHost() *ScreenHost { return &ScreenHost{} }

// Open implements window.Host.
func (h *ScreenHost) Open(groupID, title string, box window.Box) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	s := Screen{ID: fmt.Sprintf("screen-%d", h.next), GroupID: groupID, Title: title, Box: box}
	h.screens = append(h.screens, s)
	return s.ID, nil
}

// Close implements window.Host. Closing an unknown screen is a no-op.
func (h *ScreenHost) Close(id string) error {
	h.Dismiss(id)
	return nil
}

// Dismiss removes a screen, reporting whether it was open. The caller tells
// the engine with WindowClosed.
func (h *ScreenHost) Dismiss(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := slices.IndexFunc(h.screens, func(s Screen) bool { return s.ID == id })
	if i < 0 {
		return false
	}
	h.screens = slices.Delete(h.screens, i, i+1)
	return true
}

// Live is a window.LivenessChecker.
func (h *ScreenHost) Live() (map[string]bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]bool, len(h.screens))
	for _, s := range h.screens {
		out[s.ID] = true
	}
	return out, nil
}

// Screens returns open screens in the order they were opened.
func (h *ScreenHost) Screens() []Screen {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.screens)
}

// Get returns one screen.
func (h *ScreenHost) Get(id string) (Screen, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.screens {
		if s.ID == id {
			return s, true
		}
	}
	return Screen{}, false
}

// Cycle returns the screen after current in open order. The main layout
// ("") comes before the first screen and after the last one.
func (h *ScreenHost) Cycle(current string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.screens) == 0 {
		return ""
	}
	i := slices.IndexFunc(h.screens, func(s Screen) bool { return s.ID == current })
	if i+1 >= len(h.screens) {
		return ""
	}
	return h.screens[i+1].ID
}
