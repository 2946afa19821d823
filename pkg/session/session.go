// Package session drives one chat turn at a time: submit a request, hold
// the extracted candidate as a preview, then confirm or discard it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"chatcal/pkg/calendar"
	"chatcal/pkg/extract"
)

var (
	ErrBusy        = errors.New("an extraction is already in progress")
	ErrNoCandidate = errors.New("no event is waiting for confirmation")
	ErrClosed      = errors.New("session is closed")
)

// State is the position of the session in the chat state machine.
type State int

const (
	Idle State = iota
	Sending
	PreviewPending
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case PreviewPending:
		return "preview"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Extractor turns an utterance into event fields.
type Extractor interface {
	Extract(ctx context.Context, utterance string) (extract.Fields, error)
}

// Message is one submitted utterance.
type Message struct {
	Text   string
	SentAt time.Time
}

// Session owns the message log and the pending candidate. Results are
// produced on worker goroutines but only take effect through Apply.
type Session struct {
	extractor Extractor
	store     *calendar.Store
	timeout   time.Duration
	loc       *time.Location
	newID     func() string
	now       func() time.Time

	mu        sync.Mutex
	state     State
	messages  []Message
	candidate *calendar.Event
	err       error
	token     uint64
	active    *Request
	closed    bool
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout bounds each extraction. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithLocation sets the zone for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDGenerator replaces calendar.NewID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock replaces time.Now for message timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Session) {
		if fn != nil {
			s.now = fn
		}
	}
}

// New creates an idle session writing confirmed events to store.
func New(extractor Extractor, store *calendar.Store, opts ...Option) *Session {
	s := &Session{
		extractor: extractor,
		store:     store,
		loc:       time.Local,
		newID:     calendar.NewID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit starts an extraction for text. Any unconfirmed candidate is
// dropped. Blank text and submissions while another request is running are
// rejected without contacting the model.
func (s *Session) Submit(text string) (*Request, error) {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if trimmed == "" {
		return nil, extract.EmptyInputError()
	}
	if s.state == Sending {
		slog.Debug("session_submit_rejected", "token", s.token)
		return nil, ErrBusy
	}

	s.messages = append(s.messages, Message{Text: trimmed, SentAt: s.now()})
	if s.candidate != nil {
		slog.Debug("session_preview_replaced", "id", s.candidate.ID)
	}
	s.candidate = nil
	s.err = nil
	s.token++

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), s.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	req := newRequest(s.token, cancel)
	s.active = req
	s.state = Sending

	slog.Info("session_submit", "token", req.token, "chars", len(trimmed))
	go s.run(ctx, req, trimmed)
	return req, nil
}

func (s *Session) run(ctx context.Context, req *Request, text string) {
	defer req.cancel()

	res := Result{Token: req.token}
	fields, err := s.extractor.Extract(ctx, text)
	if err != nil {
		res.Err = err
		req.complete(res)
		return
	}

	candidate, err := extract.ToCandidate(fields, s.loc, s.newID)
	if err != nil {
		res.Err = err
	} else {
		res.Candidate = candidate
	}
	req.complete(res)
}

// Apply records a finished request. It reports false when the result is
// stale: the session was closed, cancelled, or has moved on to a newer
// request.
func (s *Session) Apply(res Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.active == nil || s.active.token != res.Token {
		slog.Debug("session_result_discarded", "token", res.Token, "closed", s.closed)
		return false
	}
	s.active = nil

	if res.Err != nil {
		s.state = Failed
		s.err = res.Err
		s.candidate = nil
		slog.Info("session_failed", "token", res.Token, "error", res.Err)
		return true
	}

	c := res.Candidate
	s.candidate = &c
	s.state = PreviewPending
	slog.Info("session_preview", "token", res.Token, "id", c.ID, "start", c.Start, "end", c.End)
	return true
}

// Confirm moves the candidate into the store.
func (s *Session) Confirm() (calendar.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return calendar.Event{}, ErrClosed
	}
	if s.state != PreviewPending || s.candidate == nil {
		return calendar.Event{}, ErrNoCandidate
	}

	ev := *s.candidate
	if err := s.store.Add(ev); err != nil {
		return calendar.Event{}, err
	}
	s.candidate = nil
	s.state = Idle
	slog.Info("session_confirm", "id", ev.ID, "title", ev.Title)
	return ev, nil
}

// Discard drops the candidate without storing it.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.state != PreviewPending || s.candidate == nil {
		return ErrNoCandidate
	}
	slog.Info("session_discard", "id", s.candidate.ID)
	s.candidate = nil
	s.state = Idle
	return nil
}

// Cancel abandons the running request and returns to Idle. Its result
// will be discarded by Apply. It reports whether anything was cancelled.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Sending || s.active == nil {
		return false
	}
	slog.Info("session_cancel", "token", s.active.token)
	s.active.cancel()
	s.active = nil
	s.state = Idle
	return true
}

// Close cancels any running request. Later results are ignored and further
// submissions fail with ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.active != nil {
		s.active.cancel()
		s.active = nil
	}
	slog.Debug("session_closed", "messages", len(s.messages))
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Candidate returns the pending preview, if any.
func (s *Session) Candidate() (calendar.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.candidate == nil {
		return calendar.Event{}, false
	}
	return *s.candidate, true
}

// Messages returns a copy of the message log.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Err returns the error of the last failed request while in Failed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Store returns the store confirmed events are written to.
func (s *Session) Store() *calendar.Store {
	return s.store
}
