package ui

import "github.com/charmbracelet/lipgloss"

var (
	Primary     = lipgloss.Color("#101F38")
	Accent      = lipgloss.Color("#8BC34A")
	Muted       = lipgloss.Color("#6b7280")
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
)

type Styles struct {
	Title         lipgloss.Style
	Label         lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonBusy    lipgloss.Style
	ErrorBanner   lipgloss.Style
	SuccessBanner lipgloss.Style
	Help          lipgloss.Style
}

func DefaultStyles() Styles {
	button := lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder())
	banner := lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder())

	return Styles{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(Accent).MarginBottom(1),
		Label:         lipgloss.NewStyle().Bold(true),
		Button:        button.BorderForeground(Muted),
		ButtonFocused: button.BorderForeground(Accent).Foreground(Accent).Bold(true),
		ButtonBusy:    button.BorderForeground(Muted).Foreground(Muted).Faint(true),
		ErrorBanner:   banner.BorderForeground(Destructive).Foreground(Destructive),
		SuccessBanner: banner.BorderForeground(Success).Foreground(Success),
		Help:          lipgloss.NewStyle().Foreground(Muted),
	}
}
