package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"workbench/internal/ui/textutil"
)

// SwitcherItem is one panel offered by the switcher.
type SwitcherItem struct {
	PanelID string
	Title   string
	Group   string
}

// FocusPanelMsg asks the app to focus a panel.
type FocusPanelMsg struct {
	ID string
}

// SwitcherModal picks a panel by typing part of its title. Matches are
// ranked by substring position, then by edit distance so small typos still
// find the panel.
type SwitcherModal struct {
	input    textinput.Model
	items    []SwitcherItem
	matches  []SwitcherItem
	selected int
	maxRows  int
}

var _ Modal = (*SwitcherModal)(nil)

// NewSwitcherModal creates a switcher over items, listed in the given
// order until the user types.
func NewSwitcherModal(items []SwitcherItem) *SwitcherModal {
	in := textinput.New()
	in.Placeholder = "panel"
	in.Prompt = "› "
	in.CharLimit = 64
	in.Width = 36
	in.Focus()
	m := &SwitcherModal{input: in, items: items, maxRows: 10}
	m.matches = rankPanels("", items)
	return m
}

// Init implements Modal.
func (m *SwitcherModal) Init() tea.Cmd { return textinput.Blink }

// Matches returns the ranked matches for the current query.
func (m *SwitcherModal) Matches() []SwitcherItem { return m.matches }

// Update implements Modal.
func (m *SwitcherModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc":
			return m, closeModal
		case "enter":
			if m.selected < len(m.matches) {
				id := m.matches[m.selected].PanelID
				return m, tea.Sequence(closeModal, func() tea.Msg { return FocusPanelMsg{ID: id} })
			}
			return m, nil
		case "down", "ctrl+n":
			if m.selected < len(m.matches)-1 {
				m.selected++
			}
			return m, nil
		case "up", "ctrl+p":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.matches = rankPanels(m.input.Value(), m.items)
		m.selected = 0
	}
	return m, cmd
}

// View implements Modal.
func (m *SwitcherModal) View() string {
	lines := []string{Styles.Title.Render("Go to panel"), m.input.View(), ""}
	if len(m.matches) == 0 {
		lines = append(lines, Styles.Empty.Render("no matching panels"))
	}
	for i, it := range m.matches {
		if i >= m.maxRows {
			lines = append(lines, Styles.Muted.Render(fmt.Sprintf("… %d more", len(m.matches)-m.maxRows)))
			break
		}
		row := textutil.PadRight(it.Title, 28) + " " + Styles.Muted.Render("group "+it.Group)
		if i == m.selected {
			row = Styles.Selected.Render("▸ ") + row
		} else {
			row = "  " + row
		}
		lines = append(lines, row)
	}
	lines = append(lines, "", Styles.Hint.Render("↑/↓: select  Enter: focus  Esc: cancel"))
	return Styles.BoxCompact.Render(strings.Join(lines, "\n"))
}

// rankPanels orders items for query. Titles containing the query come
// first (earlier matches first); others are kept if their prefix is within
// a small edit distance of the query.
func rankPanels(query string, items []SwitcherItem) []SwitcherItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]SwitcherItem(nil), items...)
	}
	type scored struct {
		item  SwitcherItem
		score int
	}
	var out []scored
	for _, it := range items {
		title := strings.ToLower(it.Title)
		if i := strings.Index(title, q); i >= 0 {
			out = append(out, scored{it, i})
			continue
		}
		if strings.Contains(strings.ToLower(it.PanelID), q) {
			out = append(out, scored{it, 500})
			continue
		}
		prefix := title
		if r := []rune(title); len(r) > len([]rune(q)) {
			prefix = string(r[:len([]rune(q))])
		}
		if d := levenshtein.ComputeDistance(q, prefix); d <= len([]rune(q))/3 {
			out = append(out, scored{it, 1000 + d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score < out[j].score })
	res := make([]SwitcherItem, len(out))
	for i, s := range out {
		res[i] = s.item
	}
	return res
}
