package ui

import tea "github.com/charmbracelet/bubbletea"

// Modal is a dialog drawn centered above the layout. The topmost modal
// receives every key until it closes itself.
type Modal interface {
	Init() tea.Cmd
	Update(tea.Msg) (Modal, tea.Cmd)
	View() string
}

// closeModalMsg closes the topmost modal.
type closeModalMsg struct{}

func closeModal() tea.Msg { return closeModalMsg{} }

// OverlayStack holds the open modals, topmost last.
type OverlayStack struct {
	modals []Modal
}

// Open pushes m and returns its init command.
func (s *OverlayStack) Open(m Modal) tea.Cmd {
	s.modals = append(s.modals, m)
	return m.Init()
}

// Close pops the topmost modal.
func (s *OverlayStack) Close() {
	if len(s.modals) > 0 {
		s.modals = s.modals[:len(s.modals)-1]
	}
}

// Len returns the number of open modals.
func (s *OverlayStack) Len() int { return len(s.modals) }

// Update routes msg to the topmost modal. It reports false when none is open.
func (s *OverlayStack) Update(msg tea.Msg) (tea.Cmd, bool) {
	if len(s.modals) == 0 {
		return nil, false
	}
	top := len(s.modals) - 1
	m, cmd := s.modals[top].Update(msg)
	s.modals[top] = m
	return cmd, true
}

// Views renders the open modals bottom to top.
func (s *OverlayStack) Views() []string {
	out := make([]string, len(s.modals))
	for i, m := range s.modals {
		out[i] = m.View()
	}
	return out
}
