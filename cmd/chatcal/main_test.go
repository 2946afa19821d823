package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chatcal/pkg/calendar"
	"chatcal/pkg/extract"
	"chatcal/pkg/session"

	"github.com/tidwall/gjson"
)

type stubExtractor struct {
	fields extract.Fields
	err    error
}

func (s stubExtractor) Extract(context.Context, string) (extract.Fields, error) {
	return s.fields, s.err
}

func TestExtractOnce(t *testing.T) {
	sess := session.New(stubExtractor{fields: extract.Fields{
		Title:     "Writing block",
		Timestamp: "2024-05-10T09:00:00Z",
		Duration:  120,
	}}, calendar.NewStore(), session.WithLocation(time.UTC), session.WithIDGenerator(func() string { return "ev-1" }))
	defer sess.Close()

	ev, err := extractOnce(context.Background(), sess, "Block 2 hours Friday for writing")
	if err != nil {
		t.Fatalf("extractOnce() error: %v", err)
	}
	if sess.State() != session.PreviewPending {
		t.Errorf("Expected PreviewPending, got %v", sess.State())
	}

	var buf bytes.Buffer
	if err := printEvent(&buf, ev); err != nil {
		t.Fatalf("printEvent() error: %v", err)
	}
	out := buf.String()
	if got := gjson.Get(out, "id").String(); got != "ev-1" {
		t.Errorf("Expected id ev-1, got %q", got)
	}
	if got := gjson.Get(out, "title").String(); got != "Writing block" {
		t.Errorf("Expected title, got %q", got)
	}
	if got := gjson.Get(out, "end").String(); got != "2024-05-10T11:00:00Z" {
		t.Errorf("Expected end 2024-05-10T11:00:00Z, got %q", got)
	}
}

func TestExtractOnce_Failure(t *testing.T) {
	boom := errors.New("boom")
	sess := session.New(stubExtractor{err: boom}, calendar.NewStore())
	defer sess.Close()

	if _, err := extractOnce(context.Background(), sess, "anything"); !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if sess.State() != session.Failed {
		t.Errorf("Expected Failed, got %v", sess.State())
	}
}

func TestExtractOnce_Blank(t *testing.T) {
	sess := session.New(stubExtractor{}, calendar.NewStore())
	defer sess.Close()

	if _, err := extractOnce(context.Background(), sess, "  "); !errors.Is(err, extract.ErrEmptyInput) {
		t.Fatalf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestProvidersCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"providers"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, name := range []string{"google", "openai", "openrouter"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("Expected %q in output:\n%s", name, out.String())
		}
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "chatcal version ") {
		t.Errorf("Unexpected version output: %q", out.String())
	}
}

func TestExtractCmd_RequiresText(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"extract"})

	if err := root.Execute(); err == nil {
		t.Fatal("Expected error without text argument")
	}
}
