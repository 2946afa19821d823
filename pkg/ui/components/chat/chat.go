// Package chat renders the message log, the pending preview and the
// prompt input.
package chat

import (
	"strings"
	"time"

	"chatcal/pkg/calendar"
	"chatcal/pkg/session"
	"chatcal/pkg/ui/components/agenda"
	"chatcal/pkg/ui/components/utils"
	"chatcal/pkg/ui/components/welcome"
	"chatcal/pkg/ui/styles"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

const (
	panelTitle  = "Chat"
	placeholder = "Describe an event, e.g. lunch with Sam tomorrow at noon"
	userPrefix  = "> "
)

// Panel is the left-hand chat column.
type Panel struct {
	width  int
	height int
	loc    *time.Location

	input   textinput.Model
	spinner spinner.Model

	messages  []session.Message
	candidate *calendar.Event
	errText   string
	state     session.State
}

// New creates a focused chat panel.
func New(loc *time.Location) *Panel {
	if loc == nil {
		loc = time.Local
	}
	in := textinput.New()
	in.Prompt = userPrefix
	in.Placeholder = placeholder
	in.Focus()

	return &Panel{
		loc:     loc,
		input:   in,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

// SetSize sets the panel dimensions including the border.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.SetWidth(p.contentWidth() - len(userPrefix))
}

// Sync copies the display state from s.
func (p *Panel) Sync(s *session.Session) {
	p.messages = s.Messages()
	p.state = s.State()
	if c, ok := s.Candidate(); ok {
		p.candidate = &c
	} else {
		p.candidate = nil
	}
	p.errText = ""
	if err := s.Err(); err != nil && p.state == session.Failed {
		p.errText = err.Error()
	}

	if p.state == session.Sending {
		p.input.Blur()
	} else if !p.input.Focused() {
		p.input.Focus()
	}
}

// Value returns the current input text.
func (p *Panel) Value() string {
	return p.input.Value()
}

// SetValue replaces the input text.
func (p *Panel) SetValue(v string) {
	p.input.SetValue(v)
}

// ClearInput empties the input.
func (p *Panel) ClearInput() {
	p.input.Reset()
}

// UpdateInput routes a message to the text input. Keys are ignored while a
// request is running.
func (p *Panel) UpdateInput(msg tea.Msg) tea.Cmd {
	if p.state == session.Sending {
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// StartSpinner returns the first spinner tick.
func (p *Panel) StartSpinner() tea.Cmd {
	return p.spinner.Tick
}

// UpdateSpinner advances the spinner while a request is running.
func (p *Panel) UpdateSpinner(msg spinner.TickMsg) tea.Cmd {
	if p.state != session.Sending {
		return nil
	}
	var cmd tea.Cmd
	p.spinner, cmd = p.spinner.Update(msg)
	return cmd
}

// View renders the panel.
func (p *Panel) View() string {
	width := p.contentWidth()
	height := p.contentHeight()

	footer := p.footerLines(width)
	bodyHeight := height - 1 - len(footer)
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	body := p.bodyLines(width)
	// Follow the tail of the conversation.
	if len(body) > bodyHeight {
		body = body[len(body)-bodyHeight:]
	}

	lines := make([]string, 0, height)
	lines = append(lines, styles.TitleStyle.Render(panelTitle))
	lines = append(lines, body...)
	for len(lines) < height-len(footer) {
		lines = append(lines, "")
	}
	lines = append(lines, footer...)
	for i := range lines {
		lines[i] = utils.PadStyled(lines[i], width)
	}

	return styles.PanelStyle.
		Width(p.width).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (p *Panel) bodyLines(width int) []string {
	if len(p.messages) == 0 && p.candidate == nil && p.errText == "" {
		return strings.Split(welcome.Message(width), "\n")
	}

	var lines []string
	for i, msg := range p.messages {
		if i > 0 {
			lines = append(lines, "")
		}
		stamp := msg.SentAt.In(p.loc).Format("15:04") + " "
		wrapped := utils.Wrap(msg.Text, width-len(userPrefix)-len(stamp))
		for j, line := range wrapped {
			lead := strings.Repeat(" ", len(userPrefix)+len(stamp))
			if j == 0 {
				lead = styles.TextMutedStyle.Render(stamp) + styles.UserPrefixStyle.Render(userPrefix)
			}
			lines = append(lines, lead+styles.TextStyle.Render(line))
		}
	}

	if p.candidate != nil {
		lines = append(lines, "")
		lines = append(lines, strings.Split(p.previewCard(width), "\n")...)
	}
	if p.errText != "" {
		lines = append(lines, "")
		for _, line := range utils.Wrap("Error: "+p.errText, width) {
			lines = append(lines, styles.ErrorStyle.Render(line))
		}
	}
	return lines
}

func (p *Panel) previewCard(width int) string {
	c := p.candidate
	inner := width - 4
	if inner < 1 {
		inner = 1
	}
	day := c.Start.In(p.loc).Format("Mon, 02 Jan 2006")
	rows := []string{
		styles.TextBoldStyle.Render(utils.TruncateToWidth(c.Title, inner)),
		styles.TextStyle.Render(utils.TruncateToWidth(day+"  "+agenda.TimeRange(*c, p.loc), inner)),
		styles.FooterStyle.Render(utils.TruncateToWidth("Ctrl+Y add | Esc discard", inner)),
	}
	return styles.PreviewStyle.Width(width).Render(strings.Join(rows, "\n"))
}

func (p *Panel) footerLines(width int) []string {
	rule := styles.TextMutedStyle.Render(strings.Repeat("─", width))
	if p.state == session.Sending {
		status := p.spinner.View() + " " + styles.TextMutedStyle.Render("Extracting event... (Esc to cancel)")
		return []string{rule, status}
	}
	return []string{rule, p.input.View()}
}

func (p *Panel) contentWidth() int {
	w := p.width - 4
	if w < 1 {
		return 1
	}
	return w
}

func (p *Panel) contentHeight() int {
	h := p.height - 2
	if h < 1 {
		return 1
	}
	return h
}
