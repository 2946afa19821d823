package ui

import (
	"charm.land/lipgloss/v2"
)

// Below this width the agenda moves under the chat.
const wideLayoutMinWidth = 90

// LayoutManager splits the screen between chat, agenda and status bar.
type LayoutManager struct {
	width  int
	height int
}

// NewLayoutManager creates a new layout manager
func NewLayoutManager() *LayoutManager {
	return &LayoutManager{
		width:  80,
		height: 24,
	}
}

// SetSize updates the layout dimensions
func (lm *LayoutManager) SetSize(width, height int) {
	lm.width = width
	lm.height = height
}

// Wide reports whether chat and agenda sit side by side.
func (lm *LayoutManager) Wide() bool {
	return lm.width >= wideLayoutMinWidth
}

// StatusBarHeight returns the height for status bar
func (lm *LayoutManager) StatusBarHeight() int {
	return 1
}

// ChatSize returns the outer size of the chat panel.
func (lm *LayoutManager) ChatSize() (width, height int) {
	body := lm.bodyHeight()
	if lm.Wide() {
		return lm.width * 3 / 5, body
	}
	return lm.width, max(body-lm.stackedAgendaHeight(), 1)
}

// AgendaSize returns the outer size of the agenda panel.
func (lm *LayoutManager) AgendaSize() (width, height int) {
	if lm.Wide() {
		chatWidth, body := lm.ChatSize()
		return lm.width - chatWidth, body
	}
	return lm.width, lm.stackedAgendaHeight()
}

// RenderLayout combines the panels and the status bar
func (lm *LayoutManager) RenderLayout(chatView, agendaView, statusBarContent string) string {
	var body string
	if lm.Wide() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, chatView, agendaView)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, chatView, agendaView)
	}
	return lipgloss.JoinVertical(
		lipgloss.Left,
		body,
		statusBarContent,
	)
}

// GetDimensions returns current width and height
func (lm *LayoutManager) GetDimensions() (width, height int) {
	return lm.width, lm.height
}

func (lm *LayoutManager) bodyHeight() int {
	h := lm.height - lm.StatusBarHeight()
	if h < 2 {
		return 2
	}
	return h
}

func (lm *LayoutManager) stackedAgendaHeight() int {
	h := lm.bodyHeight() / 3
	if h < 3 {
		h = 3
	}
	return h
}
