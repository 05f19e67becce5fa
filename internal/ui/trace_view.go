package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"workbench/internal/bridge"
	"workbench/internal/trace"
)

// traceContent displays recent engine operations as an ASCII tree, newest
// first.
type traceContent struct {
	rec      *trace.Recorder
	viewport viewport.Model
	follow   bool
}

// NewTraceFactory returns the factory for ComponentTrace.
func NewTraceFactory(rec *trace.Recorder) ContentFactory {
	return func(bridge.Props) (Content, error) {
		return &traceContent{rec: rec, viewport: viewport.New(0, 0), follow: true}, nil
	}
}

func (v *traceContent) SetParams(map[string]any) {}
func (v *traceContent) Close()                    {}

func (v *traceContent) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && scrollKeys(&v.viewport, k) {
		v.follow = v.viewport.AtTop()
		return nil
	}
	return nil
}

func (v *traceContent) View(width, height int) string {
	v.viewport.Width, v.viewport.Height = width, height
	v.viewport.SetContent(v.render())
	if v.follow {
		v.viewport.GotoTop()
	}
	return v.viewport.View()
}

func (v *traceContent) render() string {
	if v.rec == nil {
		return Styles.Empty.Render("tracing disabled")
	}
	roots := v.rec.Trees()
	if len(roots) == 0 {
		return Styles.Empty.Render("no operations yet")
	}
	var lines []string
	for _, s := range roots {
		lines = append(lines, renderSpan(s, "", true, true)...)
	}
	return strings.Join(lines, "\n")
}

// renderSpan renders a span and its children as tree lines.
func renderSpan(span *trace.Span, prefix string, isLast bool, root bool) []string {
	connector := "├─ "
	if isLast {
		connector = "└─ "
	}
	if root {
		connector = ""
	}

	statusIcon, statusColor := "✓", "2"
	if span.Failed() {
		statusIcon, statusColor = "✗", ColorDanger
	}

	name := span.Name
	if name == "" {
		name = "(unnamed)"
	}
	if attrs := formatAttrs(span.Attributes); attrs != "" {
		name += " " + Styles.Muted.Render(attrs)
	}
	line := prefix + connector + name + " " + Styles.Muted.Render(formatDuration(span.Duration)) +
		" " + lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor)).Render(statusIcon)
	lines := []string{line}
	if span.Failed() {
		lines = append(lines, prefix+"   "+Styles.Details.Render(span.Err))
	}

	childPrefix := prefix
	if !root {
		if isLast {
			childPrefix += "   "
		} else {
			childPrefix += "│  "
		}
	}
	for i, child := range span.Children {
		lines = append(lines, renderSpan(child, childPrefix, i == len(span.Children)-1, false)...)
	}
	return lines
}

func formatAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	return strings.Join(parts, " ")
}

// formatDuration formats an engine operation's duration. Operations are
// short, so sub-millisecond precision matters.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
