package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"workbench/internal/ui/textutil"
)

// confirmModal asks before a change that closes panels. y or enter runs the
// action; n or esc closes the modal.
type confirmModal struct {
	title    string
	question string
	affected []string
	action   actionMsg
}

var _ Modal = (*confirmModal)(nil)

func newConfirm(title, question string, action actionMsg, affected ...string) *confirmModal {
	return &confirmModal{title: title, question: question, affected: affected, action: action}
}

func (m *confirmModal) Init() tea.Cmd { return nil }

func (m *confirmModal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "esc", "n":
		return m, closeModal
	case "enter", "y":
		action := m.action
		return m, tea.Sequence(closeModal, func() tea.Msg { return action })
	}
	return m, nil
}

func (m *confirmModal) View() string {
	var b strings.Builder
	b.WriteString(Styles.TitleWarning.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(Styles.Label.Render(m.question))
	if len(m.affected) > 0 {
		b.WriteString("\n")
		b.WriteString(Styles.Details.Render(textutil.Truncate(strings.Join(m.affected, ", "), 48)))
	}
	b.WriteString("\n\n")
	b.WriteString(Styles.Hint.Render("y/Enter: confirm  Esc: cancel"))
	return Styles.BoxDanger.Render(b.String())
}
