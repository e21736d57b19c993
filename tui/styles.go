package tui

import "github.com/charmbracelet/lipgloss"

// Color palette, matched to the tray icon.
var (
	Primary   = lipgloss.Color("#8A2BE2") // Purple - accents
	Secondary = lipgloss.Color("#374151") // Dark gray - bars
	Success   = lipgloss.Color("#22c55e") // Green - online
	Warning   = lipgloss.Color("#f59e0b") // Amber - in flight
	Error     = lipgloss.Color("#ef4444") // Red - offline, bad input
	Muted     = lipgloss.Color("#6b7280") // Gray - secondary text
	White     = lipgloss.Color("#ffffff")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			Background(Primary).
			Padding(0, 1)

	onlineStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	busyStyle = lipgloss.NewStyle().
			Foreground(Warning)

	sectionStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Bold(true).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Primary).
			Padding(0, 1)

	normalStyle = lipgloss.NewStyle().
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	errorStyle = lipgloss.NewStyle().
			Foreground(Error)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Background(Secondary).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)
)
