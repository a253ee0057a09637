// internal/ui/styles.go

package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Kolory
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#C68A00", Dark: "#FFB86C"}
	failure   = lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF5555"}
	info      = lipgloss.AdaptiveColor{Light: "#1E90FF", Dark: "#7DC4E4"}
)

// Styles is the set of output styles bound to one renderer, so colour is
// only emitted when the destination is a terminal.
type Styles struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	Description lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Header      lipgloss.Style
	Cell        lipgloss.Style
	Border      lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffDel     lipgloss.Style
	DiffHunk    lipgloss.Style
	Focused     lipgloss.Style
}

// NewStyles builds the styles for renderer r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:       r.NewStyle().Bold(true).Foreground(highlight),
		Label:       r.NewStyle().Foreground(lipgloss.Color("243")),
		Description: r.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
		Success:     r.NewStyle().Foreground(special).Bold(true),
		Warning:     r.NewStyle().Foreground(warning).Bold(true),
		Error:       r.NewStyle().Foreground(failure).Bold(true),
		Header:      r.NewStyle().Bold(true).Foreground(highlight).Padding(0, 1),
		Cell:        r.NewStyle().Padding(0, 1),
		Border:      r.NewStyle().Foreground(subtle),
		DiffAdd:     r.NewStyle().Foreground(special),
		DiffDel:     r.NewStyle().Foreground(failure),
		DiffHunk:    r.NewStyle().Foreground(info),
		Focused:     r.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
	}
}
