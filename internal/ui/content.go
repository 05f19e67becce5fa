package ui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"workbench/internal/bridge"
	"workbench/internal/jsonutil"
)

// Built-in component names.
const (
	ComponentText      = "text"
	ComponentTrace     = "trace"
	ComponentInspector = "inspector"
	ComponentWelcome   = "welcome"
)

// scrollKeys applies the shared scrolling keys to vp. Returns false for
// keys it does not handle.
func scrollKeys(vp *viewport.Model, msg tea.KeyMsg) bool {
	switch msg.String() {
	case "j", "down":
		vp.LineDown(1)
	case "k", "up":
		vp.LineUp(1)
	case "ctrl+d", "pgdown":
		vp.HalfViewDown()
	case "ctrl+u", "pgup":
		vp.HalfViewUp()
	case "g", "home":
		vp.GotoTop()
	case "G", "end":
		vp.GotoBottom()
	default:
		return false
	}
	return true
}

// textContent shows params["text"], or the file at params["path"], in a
// scrollable viewport.
type textContent struct {
	vp   viewport.Model
	body string
}

// NewTextContent is the factory for ComponentText.
func NewTextContent(bridge.Props) (Content, error) {
	return &textContent{vp: viewport.New(0, 0)}, nil
}

func (c *textContent) SetParams(params map[string]any) {
	if path := jsonutil.GetString(params, "path"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			c.body = Styles.Details.Render(fmt.Sprintf("cannot read %s: %v", path, err))
		} else {
			c.body = string(data)
		}
	} else {
		c.body = jsonutil.GetString(params, "text")
	}
	c.vp.SetContent(c.body)
	if line := jsonutil.GetInt(params, "line", 0); line > 0 {
		c.vp.SetYOffset(line - 1)
	}
}

func (c *textContent) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && scrollKeys(&c.vp, k) {
		return nil
	}
	var cmd tea.Cmd
	c.vp, cmd = c.vp.Update(msg)
	return cmd
}

func (c *textContent) View(width, height int) string {
	if c.vp.Width != width || c.vp.Height != height {
		c.vp.Width, c.vp.Height = width, height
		c.vp.SetContent(c.body)
	}
	return c.vp.View()
}

func (c *textContent) Close() {}

// inspectorContent shows what the engine knows about its own panel.
type inspectorContent struct {
	props  bridge.Props
	params map[string]any
}

// NewInspectorContent is the factory for ComponentInspector.
func NewInspectorContent(props bridge.Props) (Content, error) {
	return &inspectorContent{props: props}, nil
}

func (c *inspectorContent) SetParams(params map[string]any) { c.params = params }
func (c *inspectorContent) Update(tea.Msg) tea.Cmd             { return nil }
func (c *inspectorContent) Close()                              {}

func (c *inspectorContent) View(width, height int) string {
	api, group := c.props.API, c.props.ContainerAPI
	lines := []string{
		Styles.Title.Render(api.Title()),
		fmt.Sprintf("panel   %s", api.ID()),
		fmt.Sprintf("group   %s (%d tabs)", group.ID(), len(group.PanelIDs())),
		fmt.Sprintf("active  %t", api.IsActive()),
		fmt.Sprintf("locked  %t", group.Locked()),
	}
	if len(c.params) > 0 {
		lines = append(lines, "", Styles.Muted.Render("params"))
		keys := make([]string, 0, len(c.params))
		for k := range c.params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %s = %s", k, jsonutil.ToString(c.params[k])))
		}
	}
	return strings.Join(lines, "\n")
}

// placeholder is mounted for components nobody registered.
type placeholder struct {
	title string
}

func newPlaceholder(props bridge.Props) *placeholder {
	return &placeholder{title: props.Title}
}

func (p *placeholder) SetParams(map[string]any) {}
func (p *placeholder) Update(tea.Msg) tea.Cmd    { return nil }
func (p *placeholder) Close()                    {}

func (p *placeholder) View(width, height int) string {
	return Styles.Empty.Render(fmt.Sprintf("no renderer for %q", p.title))
}

// welcomeContent lists the leader keybinds.
type welcomeContent struct {
	reg *KeybindRegistry
}

// NewWelcomeFactory returns the factory for ComponentWelcome.
func NewWelcomeFactory(reg *KeybindRegistry) ContentFactory {
	return func(bridge.Props) (Content, error) { return &welcomeContent{reg: reg}, nil }
}

func (w *welcomeContent) SetParams(map[string]any) {}
func (w *welcomeContent) Update(tea.Msg) tea.Cmd    { return nil }
func (w *welcomeContent) Close()                    {}

func (w *welcomeContent) View(width, height int) string {
	lines := []string{Styles.Title.Render("workbench"), Styles.Muted.Render("drag tabs with the mouse to dock them"), ""}
	for _, h := range w.reg.Sequences() {
		lines = append(lines, fmt.Sprintf("%-10s %s", h.Key, h.Desc))
	}
	return strings.Join(lines, "\n")
}
