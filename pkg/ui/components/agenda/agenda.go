// Package agenda renders confirmed events as a day-grouped list.
package agenda

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"chatcal/pkg/calendar"
	"chatcal/pkg/ui/components/utils"
	"chatcal/pkg/ui/styles"

	tea "charm.land/bubbletea/v2"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"github.com/mattn/go-runewidth"
)

const (
	panelTitle = "Agenda"
	emptyHint  = "No events yet. Confirm a preview with Ctrl+Y."
	dayLayout  = "Mon, 02 Jan 2006"
	timeLayout = "15:04"
)

// Day is one agenda heading with its events in start order.
type Day struct {
	Date   time.Time
	Events []calendar.Event
}

// Panel shows the store snapshot in chronological order.
type Panel struct {
	width  int
	height int
	loc    *time.Location
	events []calendar.Event
}

// New creates an agenda that renders times in loc.
func New(loc *time.Location) *Panel {
	if loc == nil {
		loc = time.Local
	}
	return &Panel{loc: loc}
}

// SetSize sets the panel dimensions including the border.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetEvents replaces the displayed events with a copy of events.
func (p *Panel) SetEvents(events []calendar.Event) {
	p.events = append(p.events[:0:0], events...)
}

// Len returns the number of displayed events.
func (p *Panel) Len() int {
	return len(p.events)
}

// GroupByDay sorts events by start and groups them by local calendar day.
// Events with equal starts keep their insertion order.
func GroupByDay(events []calendar.Event, loc *time.Location) []Day {
	sorted := append([]calendar.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var days []Day
	for _, ev := range sorted {
		start := ev.Start.In(loc)
		y, m, d := start.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, loc)
		if n := len(days); n > 0 && days[n-1].Date.Equal(date) {
			days[n-1].Events = append(days[n-1].Events, ev)
			continue
		}
		days = append(days, Day{Date: date, Events: []calendar.Event{ev}})
	}
	return days
}

// TimeRange formats the start and end of ev in loc. The end carries its
// date when the event crosses midnight.
func TimeRange(ev calendar.Event, loc *time.Location) string {
	start := ev.Start.In(loc)
	end := ev.End.In(loc)
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return start.Format(timeLayout) + "-" + end.Format(timeLayout)
	}
	return start.Format(timeLayout) + "-" + end.Format("Jan 2 "+timeLayout)
}

// PlainText renders events without styling, for the clipboard.
func PlainText(events []calendar.Event, loc *time.Location) string {
	var sb strings.Builder
	for i, day := range GroupByDay(events, loc) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(day.Date.Format(dayLayout))
		sb.WriteString("\n")
		for _, ev := range day.Events {
			fmt.Fprintf(&sb, "  %s  %s\n", TimeRange(ev, loc), ev.Title)
		}
	}
	return sb.String()
}

// CopyToClipboard writes the agenda to the terminal clipboard via OSC 52.
func (p *Panel) CopyToClipboard() tea.Cmd {
	text := PlainText(p.events, p.loc)
	return func() tea.Msg {
		_, _ = fmt.Fprint(os.Stdout, osc52.New(text))
		return nil
	}
}

// View renders the panel.
func (p *Panel) View() string {
	width := p.contentWidth()
	height := p.contentHeight()

	lines := []string{utils.PadStyled(styles.TitleStyle.Render(panelTitle), width)}
	body := p.bodyLines(width)
	if len(body) == 0 {
		body = []string{styles.PlaceholderStyle.Render(utils.TruncateToWidth(emptyHint, width))}
	}

	room := height - 1
	if room < 0 {
		room = 0
	}
	if len(body) > room {
		body = body[:room]
	}
	lines = append(lines, body...)
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = utils.PadStyled(lines[i], width)
	}

	return styles.PanelStyle.
		Width(p.width).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (p *Panel) bodyLines(width int) []string {
	var lines []string
	for i, day := range GroupByDay(p.events, p.loc) {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, styles.DayHeaderStyle.Render(utils.TruncateToWidth(day.Date.Format(dayLayout), width)))
		for _, ev := range day.Events {
			span := TimeRange(ev, p.loc)
			titleWidth := width - runewidth.StringWidth(span) - 2
			title := utils.TruncateToWidth(ev.Title, titleWidth)
			lines = append(lines, styles.TimeStyle.Render(span)+"  "+styles.TextStyle.Render(title))
		}
	}
	return lines
}

func (p *Panel) contentWidth() int {
	// border + horizontal padding
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
