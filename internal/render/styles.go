// Package render draws review state for terminals.
package render

import "github.com/charmbracelet/lipgloss"

var (
	Gold    = lipgloss.Color("#F5B301")
	Dim     = lipgloss.Color("#6B7280")
	Success = lipgloss.Color("#8BC34A")
	Danger  = lipgloss.Color("#E53935")
	Accent  = lipgloss.Color("#2196F3")
)

// Styles groups every style the renderer uses.
type Styles struct {
	Title      lipgloss.Style
	Average    lipgloss.Style
	StarFilled lipgloss.Style
	StarEmpty  lipgloss.Style
	BarFilled  lipgloss.Style
	BarEmpty   lipgloss.Style
	Muted      lipgloss.Style
	Author     lipgloss.Style
	Text       lipgloss.Style
	Label      lipgloss.Style
	Focused    lipgloss.Style
	Notice     lipgloss.Style
	Error      lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Average:    lipgloss.NewStyle().Bold(true),
		StarFilled: lipgloss.NewStyle().Foreground(Gold),
		StarEmpty:  lipgloss.NewStyle().Foreground(Dim),
		BarFilled:  lipgloss.NewStyle().Foreground(Gold),
		BarEmpty:   lipgloss.NewStyle().Foreground(Dim),
		Muted:      lipgloss.NewStyle().Foreground(Dim),
		Author:     lipgloss.NewStyle().Bold(true),
		Text:       lipgloss.NewStyle().Italic(true),
		Label:      lipgloss.NewStyle().Foreground(Accent),
		Focused:    lipgloss.NewStyle().Foreground(Accent).Bold(true),
		Notice:     lipgloss.NewStyle().Foreground(Success).Bold(true),
		Error:      lipgloss.NewStyle().Foreground(Danger).Bold(true),
	}
}

// PlainStyles renders without any terminal escapes.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Title: s, Average: s, StarFilled: s, StarEmpty: s,
		BarFilled: s, BarEmpty: s, Muted: s, Author: s,
		Text: s, Label: s, Focused: s, Notice: s, Error: s,
	}
}
