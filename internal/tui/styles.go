package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Title    lipgloss.Style
	Step     lipgloss.Style
	Label    lipgloss.Style
	Missing  lipgloss.Style
	Focused  lipgloss.Style
	Error    lipgloss.Style
	Notice   lipgloss.Style
	Help     lipgloss.Style
	Selected lipgloss.Style
}

func DefaultStyles() Styles {
	accent := lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"}
	red := lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	green := lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD75F"}
	subtle := lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}

	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Step:     lipgloss.NewStyle().Foreground(subtle),
		Label:    lipgloss.NewStyle().Width(22),
		Missing:  lipgloss.NewStyle().Width(22).Foreground(red),
		Focused:  lipgloss.NewStyle().Width(22).Foreground(accent).Bold(true),
		Error:    lipgloss.NewStyle().Foreground(red),
		Notice:   lipgloss.NewStyle().Foreground(green),
		Help:     lipgloss.NewStyle().Foreground(subtle).MarginTop(1),
		Selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
	}
}
