package ui

import "github.com/charmbracelet/lipgloss"

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - titles, active tab
	ColorHighlight = "205" // Magenta - active group, drop indicators
	ColorDanger    = "196" // Red - errors
	ColorMuted     = "241" // Gray - inactive tabs, hints
	ColorText      = "252" // Light gray - normal text
	ColorDim       = "236" // Dark gray - tab strip background
	ColorWarning   = "208" // Orange - locked groups, warnings
)

// Styles contains shared style definitions used across views and modals.
var Styles = struct {
	Title        lipgloss.Style
	TitleWarning lipgloss.Style

	Box        lipgloss.Style // Modal box (highlight border)
	BoxDanger  lipgloss.Style // Confirmation box (danger border)
	BoxCompact lipgloss.Style // Switcher and trace boxes

	// Tab strip
	TabStrip        lipgloss.Style
	Tab             lipgloss.Style
	TabActive       lipgloss.Style // active tab of an inactive group
	TabFocused      lipgloss.Style // active tab of the active group
	TabLocked       lipgloss.Style
	DropIndicator   lipgloss.Style
	DropInsert      lipgloss.Style
	Sash            lipgloss.Style
	FloatingBorder  lipgloss.Color
	StatusBar       lipgloss.Style
	StatusError     lipgloss.Style
	StatusWorkspace lipgloss.Style

	Selected lipgloss.Style
	Muted    lipgloss.Style
	Normal   lipgloss.Style
	Hint     lipgloss.Style
	Empty    lipgloss.Style
	Label    lipgloss.Style
	Details  lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(1, 2),
	BoxDanger: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDanger)).
		Padding(1, 2),
	BoxCompact: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	TabStrip: lipgloss.NewStyle().
		Background(lipgloss.Color(ColorDim)),
	Tab: lipgloss.NewStyle().
		Background(lipgloss.Color(ColorDim)).
		Foreground(lipgloss.Color(ColorMuted)),
	TabActive: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)).
		Bold(true),
	TabFocused: lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color(ColorAccent)).
		Bold(true),
	TabLocked: lipgloss.NewStyle().
		Background(lipgloss.Color(ColorDim)).
		Foreground(lipgloss.Color(ColorWarning)),
	DropIndicator: lipgloss.NewStyle().
		Background(lipgloss.Color("53")),
	DropInsert: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Sash: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	FloatingBorder: lipgloss.Color(ColorHighlight),
	StatusBar: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)).
		Background(lipgloss.Color(ColorDim)),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)).
		Background(lipgloss.Color(ColorDim)).
		Bold(true),
	StatusWorkspace: lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Label: lipgloss.NewStyle(),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
}
