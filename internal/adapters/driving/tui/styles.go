// Package tui implements the interactive change review screen using
// Bubbletea. It follows the Elm architecture: a model updated by
// messages, rendered with lipgloss styles.
package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains the pre-configured lipgloss styles for the review view.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Accepted lipgloss.Style
	Declined lipgloss.Style
	Pending  lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default colour scheme.
func DefaultStyles() *Styles {
	var (
		primary    = lipgloss.Color("#7C3AED") // purple
		secondary  = lipgloss.Color("#06B6D4") // cyan
		foreground = lipgloss.Color("#CDD6F4") // light gray
		muted      = lipgloss.Color("#6C7086") // medium gray
		green      = lipgloss.Color("#A6E3A1")
		yellow     = lipgloss.Color("#F9E2AF")
		red        = lipgloss.Color("#F38BA8")
	)

	return &Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(secondary),
		Normal:   lipgloss.NewStyle().Foreground(foreground),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(foreground).Background(primary),
		Accepted: lipgloss.NewStyle().Foreground(green),
		Declined: lipgloss.NewStyle().Foreground(red),
		Pending:  lipgloss.NewStyle().Foreground(yellow),
		Error:    lipgloss.NewStyle().Foreground(red),
		Help:     lipgloss.NewStyle().Foreground(muted),
	}
}
