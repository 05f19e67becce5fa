package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// leaderKeyMap adapts the hints for a pending sequence to help.KeyMap.
type leaderKeyMap []Hint

func (km leaderKeyMap) ShortHelp() []key.Binding {
	bindings := make([]key.Binding, 0, len(km)+1)
	for _, h := range km {
		desc := h.Desc
		if h.Menu {
			desc = "+" + desc
		}
		bindings = append(bindings, key.NewBinding(key.WithKeys(h.Key), key.WithHelp(h.Key, desc)))
	}
	return append(bindings, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")))
}

func (km leaderKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{km.ShortHelp()}
}

// RenderKeybindHelp renders the bar shown while a leader sequence is typed:
// the keys that may follow it in mode.
func RenderKeybindHelp(h *KeyHandler, mode Mode, width int) string {
	if h == nil || !h.LeaderWaiting {
		return ""
	}
	hints := h.Registry.Next(h.Sequence(), mode)
	if len(hints) == 0 {
		return ""
	}

	hm := help.New()
	hm.Width = max(width-len(h.Sequence())-6, 0)
	hm.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHighlight)).Bold(true)
	hm.Styles.ShortDesc = Styles.Muted
	hm.Styles.ShortSeparator = Styles.Muted

	content := Styles.Muted.Render(h.Sequence()) + " " + hm.ShortHelpView(leaderKeyMap(hints).ShortHelp())
	return Styles.BoxCompact.BorderForeground(lipgloss.Color(ColorAccent)).Render(content)
}
