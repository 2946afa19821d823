package calendar

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//chatcal//chatcal//EN"

// WriteICS serializes a snapshot of the store as an iCalendar document.
func (s *Store) WriteICS(w io.Writer) error {
	return writeICS(w, s.List(), time.Now().UTC())
}

// ExportICS writes the store snapshot to path, creating parent
// directories as needed. It returns the number of events written.
func (s *Store) ExportICS(path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return 0, fmt.Errorf("failed to open export file: %w", err)
	}

	events := s.List()
	if err := writeICS(f, events, time.Now().UTC()); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("failed to close export file: %w", err)
	}

	slog.Info("ics_exported", "path", path, "events", len(events))
	return len(events), nil
}

func writeICS(w io.Writer, events []Event, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)

	for _, e := range events {
		ev := cal.AddEvent(e.ID)
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(e.Start.UTC())
		ev.SetEndAt(e.End.UTC())
		ev.SetSummary(e.Title)
		ev.SetStatus(ical.ObjectStatusConfirmed)
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}
