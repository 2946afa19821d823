package extract

import (
	"math"
	"time"

	"chatcal/pkg/calendar"

	"github.com/jinzhu/now"
)

// Naive ISO layouts the model sometimes produces, tried before jinzhu/now's
// own list. All of them are read in the user's zone.
var lenientLayouts = append([]string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
}, now.TimeFormats...)

// ToCandidate converts fields into a preview event with a fresh ID. Zoneless
// timestamps are read in loc.
func ToCandidate(fields Fields, loc *time.Location, newID func() string) (calendar.Event, error) {
	if loc == nil {
		loc = time.Local
	}
	if newID == nil {
		newID = calendar.NewID
	}

	start, err := ParseTimestamp(fields.Timestamp, loc)
	if err != nil {
		return calendar.Event{}, err
	}

	if math.IsNaN(fields.Duration) || math.IsInf(fields.Duration, 0) || fields.Duration <= 0 {
		return calendar.Event{}, newError(ErrNonPositiveDuration, nil, "Duration must be positive, got %g minutes", fields.Duration)
	}

	return calendar.Event{
		ID:    newID(),
		Title: fields.Title,
		Start: start,
		End:   start.Add(minutes(fields.Duration)),
	}, nil
}

// ParseTimestamp accepts RFC 3339 first and falls back to common zoneless
// layouts in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, newError(ErrInvalidTimestamp, nil, "The model returned an empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	cfg := &now.Config{
		TimeLocation: loc,
		TimeFormats:  lenientLayouts,
	}
	t, err := cfg.Parse(s)
	if err != nil {
		return time.Time{}, newError(ErrInvalidTimestamp, err, "Could not read timestamp %q", s)
	}
	return t, nil
}

func minutes(m float64) time.Duration {
	return time.Duration(math.Round(m * float64(time.Minute)))
}
