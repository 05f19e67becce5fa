package ui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode is what the terminal is showing: the main layout or a popout screen.
type Mode int

const (
	ModeLayout Mode = iota
	ModeScreen
)

func (m Mode) String() string {
	switch m {
	case ModeLayout:
		return "Layout"
	case ModeScreen:
		return "Screen"
	default:
		return "Unknown"
	}
}

// Leader is the canonical name of the leader key in sequences.
const Leader = "SPC"

type binding struct {
	cmd   tea.Cmd
	desc  string
	modes []Mode // empty: every mode
}

func (b binding) in(mode Mode) bool {
	return len(b.modes) == 0 || slices.Contains(b.modes, mode)
}

// Hint is one entry of the help shown while a sequence is being typed.
type Hint struct {
	Key  string
	Desc string
	Menu bool
}

// KeybindRegistry maps key sequences such as "ctrl+p" or "SPC g v" to
// commands.
type KeybindRegistry struct {
	bindings map[string]binding
	menus    map[string]string
}

// NewKeybindRegistry creates an empty registry.
func NewKeybindRegistry() *KeybindRegistry {
	return &KeybindRegistry{
		bindings: make(map[string]binding),
		menus:    make(map[string]string),
	}
}

// Bind registers seq, replacing any existing binding. With modes the
// binding only applies while the terminal shows one of them.
func (r *KeybindRegistry) Bind(seq, desc string, cmd tea.Cmd, modes ...Mode) {
	r.bindings[canonical(seq)] = binding{cmd: cmd, desc: desc, modes: modes}
}

// Menu labels the submenu opened by prefix, e.g. Menu("SPC g", "Group").
func (r *KeybindRegistry) Menu(prefix, label string) {
	r.menus[canonical(prefix)] = label
}

// Lookup returns the command bound to seq in mode, or nil.
func (r *KeybindRegistry) Lookup(seq string, mode Mode) tea.Cmd {
	b, ok := r.bindings[canonical(seq)]
	if !ok || !b.in(mode) {
		return nil
	}
	return b.cmd
}

// continues reports whether some binding extends seq with more keys.
func (r *KeybindRegistry) continues(seq string, mode Mode) bool {
	prefix := canonical(seq) + " "
	for s, b := range r.bindings {
		if b.cmd != nil && b.in(mode) && strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// Sequences returns every bound sequence with its description, sorted.
func (r *KeybindRegistry) Sequences() []Hint {
	out := make([]Hint, 0, len(r.bindings))
	for s, b := range r.bindings {
		if b.cmd == nil {
			continue
		}
		desc := b.desc
		if desc == "" {
			desc = s
		}
		out = append(out, Hint{Key: s, Desc: desc})
	}
	slices.SortFunc(out, func(a, b Hint) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Next returns the keys that may follow seq in mode, sorted. A key that
// opens a submenu is reported once with the submenu's label.
func (r *KeybindRegistry) Next(seq string, mode Mode) []Hint {
	prefix := canonical(seq) + " "
	seen := make(map[string]Hint)
	for s, b := range r.bindings {
		if b.cmd == nil || !b.in(mode) || !strings.HasPrefix(s, prefix) {
			continue
		}
		rest := strings.Fields(strings.TrimPrefix(s, prefix))
		k := rest[0]
		if len(rest) > 1 {
			label, ok := r.menus[prefix+k]
			if !ok {
				label = k + "…"
			}
			seen[k] = Hint{Key: k, Desc: label, Menu: true}
			continue
		}
		if _, ok := seen[k]; !ok {
			desc := b.desc
			if desc == "" {
				desc = s
			}
			seen[k] = Hint{Key: k, Desc: desc}
		}
	}
	out := make([]Hint, 0, len(seen))
	for _, h := range seen {
		out = append(out, h)
	}
	slices.SortFunc(out, func(a, b Hint) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// canonical spells the leader as SPC and collapses whitespace.
func canonical(seq string) string {
	parts := strings.Fields(seq)
	for i, p := range parts {
		parts[i] = seqPart(p)
	}
	return strings.Join(parts, " ")
}

func seqPart(key string) string {
	if key == " " || key == "space" {
		return Leader
	}
	return key
}

// KeyHandler tracks a leader sequence in progress.
type KeyHandler struct {
	Registry      *KeybindRegistry
	LeaderWaiting bool
	Buffer        []string // keys typed since the leader, leader included
}

// NewKeyHandler returns a handler for reg. Bubble Tea reports space as " ".
func NewKeyHandler(reg *KeybindRegistry) *KeyHandler {
	return &KeyHandler{Registry: reg}
}

// Sequence returns the keys typed so far.
func (h *KeyHandler) Sequence() string {
	return strings.Join(h.Buffer, " ")
}

// Handle processes msg in mode. A consumed key belongs to the keybind system
// and must not reach panel content.
func (h *KeyHandler) Handle(msg tea.KeyMsg, mode Mode) (consumed bool, cmd tea.Cmd) {
	key := seqPart(msg.String())

	switch {
	case key == "esc":
		if !h.LeaderWaiting {
			return false, nil
		}
		h.reset()
		return true, nil

	case !h.LeaderWaiting && key == Leader:
		h.LeaderWaiting = true
		h.Buffer = []string{Leader}
		return true, nil

	case h.LeaderWaiting:
		h.Buffer = append(h.Buffer, key)
		seq := h.Sequence()
		if c := h.Registry.Lookup(seq, mode); c != nil {
			h.reset()
			return true, c
		}
		if !h.Registry.continues(seq, mode) {
			h.reset()
		}
		return true, nil
	}

	if c := h.Registry.Lookup(key, mode); c != nil {
		return true, c
	}
	return false, nil
}

func (h *KeyHandler) reset() {
	h.LeaderWaiting = false
	h.Buffer = nil
}
