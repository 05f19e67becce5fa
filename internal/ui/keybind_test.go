package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeybindRegistry_BindLookup(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("q", "quit", tea.Quit)
	reg.Bind("SPC q", "quit", tea.Quit)
	reg.Bind("j", "", nil)

	assert.NotNil(t, reg.Lookup("q", ModeLayout))
	assert.NotNil(t, reg.Lookup("space  q", ModeLayout), "space is the leader")
	assert.Nil(t, reg.Lookup("j", ModeLayout))
	assert.Nil(t, reg.Lookup("unknown", ModeLayout))

	seqs := reg.Sequences()
	require.Len(t, seqs, 2, "nil commands are not listed")
	assert.Equal(t, "SPC q", seqs[0].Key)
	assert.Equal(t, "q", seqs[1].Key)
}

func TestKeybindRegistry_ModeFilter(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Menu("SPC w", "Window")
	reg.Bind("SPC w c", "close screen", tea.Quit, ModeScreen)

	assert.Nil(t, reg.Lookup("SPC w c", ModeLayout))
	assert.NotNil(t, reg.Lookup("SPC w c", ModeScreen))

	assert.Empty(t, reg.Next(Leader, ModeLayout))
	assert.Equal(t, []Hint{{Key: "w", Desc: "Window", Menu: true}}, reg.Next(Leader, ModeScreen))
	assert.Equal(t, []Hint{{Key: "c", Desc: "close screen"}}, reg.Next("SPC w", ModeScreen))
}

func TestKeybindRegistry_UnlabeledMenu(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC x y", "", tea.Quit)

	assert.Equal(t, []Hint{{Key: "x", Desc: "x…", Menu: true}}, reg.Next(Leader, ModeLayout))
	assert.Equal(t, []Hint{{Key: "y", Desc: "SPC x y"}}, reg.Next("SPC x", ModeLayout))
}

func TestKeyHandler_LeaderSequence(t *testing.T) {
	reg := NewKeybindRegistry()
	var executed bool
	reg.Bind("SPC g v", "split right", func() tea.Msg {
		executed = true
		return nil
	})
	h := NewKeyHandler(reg)

	for _, k := range []string{" ", "g"} {
		consumed, cmd := h.Handle(keyMsg(k), ModeLayout)
		require.True(t, consumed, k)
		require.Nil(t, cmd, k)
		require.True(t, h.LeaderWaiting, k)
	}
	assert.Equal(t, "SPC g", h.Sequence())

	consumed, cmd := h.Handle(keyMsg("v"), ModeLayout)
	require.True(t, consumed)
	require.NotNil(t, cmd)
	assert.False(t, h.LeaderWaiting)
	cmd()
	assert.True(t, executed)
}

func TestKeyHandler_EscCancelsLeader(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC x", "", tea.Quit)
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "), ModeLayout)
	require.True(t, h.LeaderWaiting)

	consumed, cmd := h.Handle(keyMsg("esc"), ModeLayout)
	assert.True(t, consumed)
	assert.Nil(t, cmd)
	assert.False(t, h.LeaderWaiting)

	consumed, _ = h.Handle(keyMsg("esc"), ModeLayout)
	assert.False(t, consumed, "esc outside a sequence reaches the content")
}

func TestKeyHandler_UnknownSequenceResets(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC x", "", tea.Quit)
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "), ModeLayout)
	consumed, cmd := h.Handle(keyMsg("z"), ModeLayout)
	assert.True(t, consumed)
	assert.Nil(t, cmd)
	assert.False(t, h.LeaderWaiting)
	assert.Empty(t, h.Buffer)
}

func TestKeyHandler_ModeOnlyMenuResets(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("SPC w c", "", tea.Quit, ModeScreen)
	h := NewKeyHandler(reg)

	h.Handle(keyMsg(" "), ModeLayout)
	h.Handle(keyMsg("w"), ModeLayout)
	assert.False(t, h.LeaderWaiting, "nothing under SPC w applies to the layout")
}

func TestKeyHandler_SingleKeyAndFallthrough(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Bind("ctrl+c", "quit", tea.Quit)
	h := NewKeyHandler(reg)

	consumed, cmd := h.Handle(tea.KeyMsg{Type: tea.KeyCtrlC}, ModeLayout)
	assert.True(t, consumed)
	assert.NotNil(t, cmd)

	consumed, _ = h.Handle(keyMsg("j"), ModeLayout)
	assert.False(t, consumed, "unbound keys reach panel content")
}

func TestRenderKeybindHelp(t *testing.T) {
	reg := NewKeybindRegistry()
	reg.Menu("SPC g", "Group")
	reg.Bind("SPC q", "Quit", tea.Quit)
	reg.Bind("SPC g v", "Split right", tea.Quit)
	h := NewKeyHandler(reg)

	assert.Empty(t, RenderKeybindHelp(h, ModeLayout, 80), "nothing before the leader")
	h.Handle(keyMsg(" "), ModeLayout)

	out := RenderKeybindHelp(h, ModeLayout, 80)
	for _, want := range []string{"SPC", "Quit", "+Group", "cancel"} {
		assert.True(t, containsPlain(out, want), "help bar missing %q:\n%s", want, out)
	}
	assert.Empty(t, RenderKeybindHelp(nil, ModeLayout, 80))
}

// keyMsg builds the tea.KeyMsg a terminal delivers for s.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "space", " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}
