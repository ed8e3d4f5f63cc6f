package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// StyleManager encapsulates all TUI styles
type StyleManager struct {
	// List view styles
	Title    lipgloss.Style
	Meta     lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Mark     lipgloss.Style
	Dim      lipgloss.Style

	// Preview styles
	PreviewTitle lipgloss.Style
	PreviewPath  lipgloss.Style

	// Status badges
	Draft     lipgloss.Style
	Published lipgloss.Style

	Divider lipgloss.Style

	SelectedBg lipgloss.Color
}

// DefaultStyles returns a StyleManager with default styles
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:        lipgloss.NewStyle(),
		Meta:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Mark:         lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		PreviewTitle: lipgloss.NewStyle().Bold(true),
		PreviewPath:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Draft:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Published:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		SelectedBg:   lipgloss.Color("236"),
	}
}

// WithSelection returns a copy of the given style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// Status picks the badge style for a publish status
func (s *StyleManager) Status(status string) lipgloss.Style {
	if status == "published" {
		return s.Published
	}
	return s.Draft
}

// Global style manager instance
var styles = DefaultStyles()

// RefreshStyles rebuilds styles against the current default renderer
func RefreshStyles() {
	styles = DefaultStyles()
}
