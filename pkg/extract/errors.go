package extract

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrEmptyInput          = errors.New("empty input")
	ErrNetworkFailure      = errors.New("network failure")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrSchemaViolation     = errors.New("schema violation")
	ErrInvalidTimestamp    = errors.New("invalid timestamp")
	ErrNonPositiveDuration = errors.New("non-positive duration")
)

// Error is returned by every failing extraction step. Kind is one of the
// Err* sentinels, Msg is safe to show to the user and Err is the optional
// underlying cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Err:  cause,
	}
}

// EmptyInputError is returned for blank utterances before any call is made.
func EmptyInputError() *Error {
	return newError(ErrEmptyInput, nil, "Type a scheduling request first")
}

// KindOf returns the error kind carried by err, or nil if err did not come
// from this package.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}
