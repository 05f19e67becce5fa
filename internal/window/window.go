// Package window tracks the OS-level windows that show popout groups.
// The Tracker maps window ids to the group each window displays and supports
// liveness pruning, since a host window can be closed by the user outside the
// engine's control.
package window

import (
	"sort"
	"sync"
	"time"
)

// Box is a window's position and size in host coordinates.
type Box struct {
	Top, Left, Width, Height int
}

// Host opens and closes popout windows. The TUI implements it with alternate
// screens; tests inject a stub.
type Host interface {
	Open(groupID, title string, box Box) (windowID string, err error)
	Close(windowID string) error
}

// LivenessChecker returns the set of window ids the host still has open.
type LivenessChecker func() (map[string]bool, error)

// Tracked holds metadata about one open popout window.
type Tracked struct {
	WindowID string
	GroupID  string
	URL      string
	OpenedAt time.Time
}

// Tracker maps popout windows to groups. Safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	windows  map[string]Tracked // windowID -> window
	liveness LivenessChecker
}

// New creates a Tracker. If liveness is nil, Prune is a no-op.
func New(liveness LivenessChecker) *Tracker {
	return &Tracker{
		windows:  make(map[string]Tracked),
		liveness: liveness,
	}
}

// Register records that windowID shows groupID, replacing any previous entry
// for the same window.
func (t *Tracker) Register(windowID, groupID, url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.windows[windowID] = Tracked{
		WindowID: windowID,
		GroupID:  groupID,
		URL:      url,
		OpenedAt: time.Now(),
	}
}

// Unregister removes a window. Returns true if it was tracked.
func (t *Tracker) Unregister(windowID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.windows[windowID]; !ok {
		return false
	}
	delete(t.windows, windowID)
	return true
}

// UnregisterGroup removes the window showing groupID and returns its id.
func (t *Tracker) UnregisterGroup(groupID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, w := range t.windows {
		if w.GroupID == groupID {
			delete(t.windows, id)
			return id, true
		}
	}
	return "", false
}

// GroupFor returns the group shown in windowID.
func (t *Tracker) GroupFor(windowID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	w, ok := t.windows[windowID]
	return w.GroupID, ok
}

// WindowFor returns the window showing groupID.
func (t *Tracker) WindowFor(groupID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, w := range t.windows {
		if w.GroupID == groupID {
			return id, true
		}
	}
	return "", false
}

// All returns every tracked window ordered by window id.
func (t *Tracker) All() []Tracked {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Tracked, 0, len(t.windows))
	for _, w := range t.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WindowID < out[j].WindowID })
	return out
}

// Count returns the number of tracked windows.
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.windows)
}

// Prune removes windows the host no longer reports as open and returns them,
// so the caller can close or re-dock their groups.
func (t *Tracker) Prune() ([]Tracked, error) {
	if t.liveness == nil {
		return nil, nil
	}
	live, err := t.liveness()
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var pruned []Tracked
	for id, w := range t.windows {
		if !live[id] {
			pruned = append(pruned, w)
			delete(t.windows, id)
		}
	}
	sort.Slice(pruned, func(i, j int) bool { return pruned[i].WindowID < pruned[j].WindowID })
	return pruned, nil
}
