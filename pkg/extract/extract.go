// Package extract turns a free-text scheduling request into typed event
// fields through a forced LLM function call.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"chatcal/pkg/ai"

	"github.com/tidwall/gjson"
)

// Fields are the validated arguments of a create_event_trace call.
type Fields struct {
	Title     string  `json:"title"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// Client performs extractions against a single provider.
type Client struct {
	provider ai.Provider
	model    string
	loc      *time.Location
	now      func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = strings.TrimSpace(model) }
}

// WithLocation sets the zone used to describe "now" to the model.
func WithLocation(loc *time.Location) Option {
	return func(c *Client) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a Client backed by provider.
func NewClient(provider ai.Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		loc:      time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract sends utterance to the model and returns the parsed fields. It
// makes exactly one provider call, or none when utterance is blank. The
// caller owns the deadline.
func (c *Client) Extract(ctx context.Context, utterance string) (Fields, error) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return Fields{}, EmptyInputError()
	}

	req := ai.FunctionCallRequest{
		Model:    c.model,
		Messages: buildMessages(text, c.now().In(c.loc)),
		Function: FunctionSchema(),
	}

	start := time.Now()
	slog.Debug("extraction_start", "chars", len(text), "model", c.model)

	resp, err := c.provider.CreateFunctionCall(ctx, req)
	if err != nil {
		slog.Warn("extraction_network_error", "error", err, "elapsed", time.Since(start))
		return Fields{}, newError(ErrNetworkFailure, err, "Could not reach the model")
	}

	if resp.Call == nil {
		slog.Warn("extraction_no_call", "model", resp.Model, "content_chars", len(resp.Content))
		return Fields{}, newError(ErrMalformedResponse, nil, "The model replied without calling %s", FunctionName)
	}
	if resp.Call.Name != FunctionName {
		slog.Warn("extraction_wrong_function", "name", resp.Call.Name)
		return Fields{}, newError(ErrMalformedResponse, nil, "The model called %q instead of %s", resp.Call.Name, FunctionName)
	}

	fields, err := parseArguments(resp.Call.Arguments)
	if err != nil {
		slog.Warn("extraction_bad_arguments", "error", err)
		return Fields{}, err
	}

	slog.Info("extraction_done",
		"model", resp.Model,
		"elapsed", time.Since(start),
		"duration_minutes", fields.Duration,
	)
	return fields, nil
}

// parseArguments decodes the serialized argument object into Fields in a
// single step.
func parseArguments(raw string) (Fields, error) {
	if !gjson.Valid(raw) {
		return Fields{}, newError(ErrMalformedResponse, nil, "The model returned unparsable arguments")
	}
	args := gjson.Parse(raw)
	if !args.IsObject() {
		return Fields{}, newError(ErrMalformedResponse, nil, "The model returned arguments that are not an object")
	}

	title := args.Get("title")
	timestamp := args.Get("timestamp")
	duration := args.Get("duration")

	for _, f := range []struct {
		name string
		val  gjson.Result
		typ  gjson.Type
	}{
		{"title", title, gjson.String},
		{"timestamp", timestamp, gjson.String},
		{"duration", duration, gjson.Number},
	} {
		if !f.val.Exists() || f.val.Type == gjson.Null {
			return Fields{}, newError(ErrSchemaViolation, nil, "The model omitted the required field %q", f.name)
		}
		if f.val.Type != f.typ {
			return Fields{}, newError(ErrSchemaViolation, nil, "Field %q has type %s, expected %s", f.name, f.val.Type, f.typ)
		}
	}

	fields := Fields{
		Title:     strings.TrimSpace(title.String()),
		Timestamp: strings.TrimSpace(timestamp.String()),
		Duration:  duration.Float(),
	}
	if fields.Title == "" {
		return Fields{}, newError(ErrSchemaViolation, nil, "The model returned an empty title")
	}
	return fields, nil
}
