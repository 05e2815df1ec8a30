package tui

import (
	"github.com/charmbracelet/lipgloss"

	"conti/internal/charts"
)

// Styles is the look of the browser for one palette.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cell     lipgloss.Style
	Selected lipgloss.Style
	Status   lipgloss.Style
	Notice   lipgloss.Style
	Prompt   lipgloss.Style
	Muted    lipgloss.Style
}

// NewStyles derives the browser styles from a chart palette.
func NewStyles(p charts.Palette) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Text).MarginBottom(1),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(p.Text).PaddingRight(2),
		Cell:     lipgloss.NewStyle().Foreground(p.Text).PaddingRight(2),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Line).PaddingRight(2),
		Status:   lipgloss.NewStyle().Foreground(p.Grid).MarginTop(1),
		Notice:   lipgloss.NewStyle().Bold(true).Foreground(p.Negative),
		Prompt:   lipgloss.NewStyle().Bold(true).Foreground(p.Negative),
		Muted:    lipgloss.NewStyle().Foreground(p.Grid),
	}
}
