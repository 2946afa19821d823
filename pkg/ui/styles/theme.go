// Package styles provides the shared colors and lipgloss styles of the
// chatcal UI.
package styles

import (
	"charm.land/lipgloss/v2"
)

// Color palette - ANSI 256 colors used throughout the application
var (
	ColorAccent = lipgloss.Color("141")

	ColorText       = lipgloss.Color("252")
	ColorTextMuted  = lipgloss.Color("245")
	ColorTextBright = lipgloss.Color("15")

	ColorError   = lipgloss.Color("196")
	ColorWarning = lipgloss.Color("214")
	ColorSuccess = lipgloss.Color("42")

	ColorPlaceholder = lipgloss.Color("240")

	ColorBorder      = lipgloss.Color("141")
	ColorBorderMuted = lipgloss.Color("62")
)

// Panel styles
var (
	// PanelStyle frames the chat and agenda panels.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderMuted)

	// PreviewStyle frames the pending event card.
	PreviewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorWarning).
			Padding(0, 1)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	TextMutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)

	TextBoldStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	// UserPrefixStyle marks submitted utterances in the chat log.
	UserPrefixStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	// DayHeaderStyle heads each day in the agenda.
	DayHeaderStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	// TimeStyle renders agenda time ranges.
	TimeStyle = lipgloss.NewStyle().
			Foreground(ColorTextBright)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(ColorPlaceholder).
				Italic(true)
)

// Feedback styles
var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	// StatusBarBusyStyle is used while an extraction is running.
	StatusBarBusyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#00B8D4")).
				Padding(0, 1).
				Bold(true)

	// StatusBarErrorStyle is used after a failed extraction.
	StatusBarErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#C62828")).
				Padding(0, 1).
				Bold(true)
)

// Welcome box styles
var (
	WelcomeBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("99"))

	WelcomeTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("219")).
				Bold(true)

	WelcomeKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true)

	WelcomeVersionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))
)
