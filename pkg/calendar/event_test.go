package calendar

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func testEvent(id, title string, start time.Time, minutes int) Event {
	return Event{
		ID:    id,
		Title: title,
		Start: start,
		End:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestStore_AddPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	later := testEvent("b", "Later", base.Add(48*time.Hour), 30)
	earlier := testEvent("a", "Earlier", base, 60)

	if err := s.Add(later); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := s.Add(earlier); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	got := s.List()
	if len(got) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("Expected insertion order [b a], got [%s %s]", got[0].ID, got[1].ID)
	}
	if s.Len() != 2 {
		t.Errorf("Expected Len() 2, got %d", s.Len())
	}
}

func TestStore_ListIsSnapshot(t *testing.T) {
	s := NewStore()
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	if err := s.Add(testEvent("a", "Original", start, 60)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	snap := s.List()
	snap[0].Title = "Mutated"

	if got := s.List()[0].Title; got != "Original" {
		t.Fatalf("Expected store to be unaffected by snapshot edits, got %q", got)
	}
}

func TestStore_RejectsDuplicateID(t *testing.T) {
	s := NewStore()
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	if err := s.Add(testEvent("dup", "First", start, 60)); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	err := s.Add(testEvent("dup", "Second", start, 60))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Expected ErrDuplicateID, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Expected store to keep one event, got %d", s.Len())
	}
}

func TestStore_RejectsEmptyID(t *testing.T) {
	var s Store
	if err := s.Add(Event{Title: "No id"}); err == nil {
		t.Fatal("Expected error for empty id")
	}
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore()
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.List()
				_ = s.Len()
			}
		}()
	}
	for i := 0; i < 50; i++ {
		if err := s.Add(testEvent(NewID(), "e", start, 15)); err != nil {
			t.Fatalf("Add() error: %v", err)
		}
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Fatalf("Expected 50 events, got %d", s.Len())
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("Expected non-empty id")
		}
		if seen[id] {
			t.Fatalf("Duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestEvent_Duration(t *testing.T) {
	e := testEvent("a", "x", time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC), 120)
	if e.Duration() != 2*time.Hour {
		t.Fatalf("Expected 2h, got %s", e.Duration())
	}
}
