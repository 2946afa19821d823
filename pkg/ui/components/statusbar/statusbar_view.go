package statusbar

import (
	"fmt"
	"strings"

	"chatcal/pkg/session"
	"chatcal/pkg/ui/styles"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

const helpHint = "Enter send | Ctrl+Y add | Esc discard | Ctrl+E export | Ctrl+K copy | Ctrl+C quit"

// StatusBarView renders the one-line status bar under the panels.
type StatusBarView struct {
	state    session.State
	provider string
	model    string
	events   int
	message  string
	width    int
}

// NewStatusBarView creates a new status bar view
func NewStatusBarView() *StatusBarView {
	return &StatusBarView{width: 80}
}

// SetState updates the session state shown on the left.
func (s *StatusBarView) SetState(state session.State) {
	s.state = state
}

// SetProvider sets the provider and model labels.
func (s *StatusBarView) SetProvider(provider, model string) {
	s.provider = strings.TrimSpace(provider)
	s.model = strings.TrimSpace(model)
}

// SetEventCount sets the number of stored events.
func (s *StatusBarView) SetEventCount(n int) {
	s.events = n
}

// SetMessage sets a temporary message. An empty message restores the key
// help.
func (s *StatusBarView) SetMessage(msg string) {
	s.message = msg
}

// Message returns the current temporary message.
func (s *StatusBarView) Message() string {
	return s.message
}

// SetWidth updates the width for rendering
func (s *StatusBarView) SetWidth(width int) {
	s.width = width
}

// Render returns the styled status bar string
func (s *StatusBarView) Render() string {
	llm := s.provider
	if s.model != "" {
		if llm != "" {
			llm += "/"
		}
		llm += s.model
	}
	if llm == "" {
		llm = "unknown"
	}

	tail := s.message
	if tail == "" {
		tail = helpHint
	}
	content := fmt.Sprintf("[%s] %d events | [llm]: %s | %s", s.state, s.events, llm, tail)

	// Truncate if too long (ANSI-aware width).
	maxWidth := s.width - 2
	if maxWidth < 10 {
		maxWidth = 10
	}
	if ansi.StringWidth(content) > maxWidth {
		content = ansi.Truncate(content, maxWidth, "...")
	}

	styled := s.style().Render(content)
	if w := lipgloss.Width(styled); w < s.width {
		styled += strings.Repeat(" ", s.width-w)
	}
	return styled
}

func (s *StatusBarView) style() lipgloss.Style {
	switch s.state {
	case session.Sending:
		return styles.StatusBarBusyStyle
	case session.Failed:
		return styles.StatusBarErrorStyle
	default:
		return styles.StatusBarStyle
	}
}
