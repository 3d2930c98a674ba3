package agenda

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.Color("#2DA44E")
	channelBg   = lipgloss.Color("#0969DA")
	errorColor  = lipgloss.Color("#CF222E")
	dimColor    = lipgloss.Color("#6E7681")
	dateColor   = lipgloss.Color("#A371F7")
	textColor   = lipgloss.Color("#FFFFFF")

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1).
			Width(60)

	titleStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Bold(true)

	whenStyle = lipgloss.NewStyle().
			Foreground(dateColor).
			Italic(true)

	badgeStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(channelBg).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)
)
