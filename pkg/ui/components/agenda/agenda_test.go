package agenda

import (
	"strings"
	"testing"
	"time"

	"chatcal/pkg/calendar"

	"github.com/charmbracelet/x/ansi"
)

func ev(id, title string, start time.Time, minutes int) calendar.Event {
	return calendar.Event{ID: id, Title: title, Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

func TestGroupByDay_ChronologicalAcrossInsertionOrder(t *testing.T) {
	day1 := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	events := []calendar.Event{
		ev("c", "Late", day2.Add(3*time.Hour), 30),
		ev("a", "Writing block", day1, 120),
		ev("b", "Lunch", day1.Add(3*time.Hour), 60),
		ev("d", "Early", day2, 30),
	}

	days := GroupByDay(events, time.UTC)
	if len(days) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(days))
	}
	if got := ids(days[0].Events); got != "a,b" {
		t.Errorf("Expected day 1 order a,b got %s", got)
	}
	if got := ids(days[1].Events); got != "d,c" {
		t.Errorf("Expected day 2 order d,c got %s", got)
	}
	if events[0].ID != "c" {
		t.Fatal("GroupByDay must not reorder its input")
	}
}

func TestGroupByDay_UsesLocation(t *testing.T) {
	// 23:30 UTC is already the next day in Tokyo.
	start := time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC)
	tokyo := time.FixedZone("JST", 9*60*60)

	days := GroupByDay([]calendar.Event{ev("a", "x", start, 30)}, tokyo)
	if len(days) != 1 || days[0].Date.Day() != 11 {
		t.Fatalf("Expected event on May 11 in Tokyo, got %+v", days)
	}
}

func TestTimeRange(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	if got := TimeRange(ev("a", "x", start, 120), time.UTC); got != "09:00-11:00" {
		t.Errorf("Unexpected same-day range %q", got)
	}
	late := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
	if got := TimeRange(ev("a", "x", late, 120), time.UTC); got != "23:00-May 11 01:00" {
		t.Errorf("Unexpected overnight range %q", got)
	}
}

func TestPlainText(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	got := PlainText([]calendar.Event{ev("a", "Writing block", start, 120)}, time.UTC)
	want := "Fri, 10 May 2024\n  09:00-11:00  Writing block\n"
	if got != want {
		t.Fatalf("PlainText() = %q, want %q", got, want)
	}
	if PlainText(nil, time.UTC) != "" {
		t.Fatal("Expected empty text for no events")
	}
}

func TestPanel_View(t *testing.T) {
	p := New(time.UTC)
	p.SetSize(40, 10)

	view := ansi.Strip(p.View())
	if !strings.Contains(view, "Agenda") {
		t.Fatalf("Expected title, got:\n%s", view)
	}
	if !strings.Contains(view, "No events yet") {
		t.Fatalf("Expected empty hint, got:\n%s", view)
	}

	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	p.SetEvents([]calendar.Event{ev("a", "Writing block with a very long title that overflows", start, 120)})
	if p.Len() != 1 {
		t.Fatalf("Expected 1 event, got %d", p.Len())
	}

	view = ansi.Strip(p.View())
	if !strings.Contains(view, "Fri, 10 May 2024") || !strings.Contains(view, "09:00-11:00") {
		t.Fatalf("Expected day header and range, got:\n%s", view)
	}
	if !strings.Contains(view, "...") {
		t.Fatalf("Expected long title to be truncated, got:\n%s", view)
	}
	for _, line := range strings.Split(view, "\n") {
		if ansi.StringWidth(line) > 40 {
			t.Fatalf("Line exceeds panel width: %q", line)
		}
	}
}

func TestPanel_SetEventsCopies(t *testing.T) {
	p := New(time.UTC)
	events := []calendar.Event{ev("a", "x", time.Now(), 10)}
	p.SetEvents(events)
	events[0].Title = "changed"
	if p.events[0].Title != "x" {
		t.Fatal("Expected SetEvents to copy its input")
	}
}

func ids(events []calendar.Event) string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return strings.Join(out, ",")
}
