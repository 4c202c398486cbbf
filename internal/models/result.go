package models

import (
	"encoding/json"
	"fmt"
)

// ErrorKind classifies a calculation failure.
type ErrorKind string

const (
	ErrMissingField     ErrorKind = "missing_field"
	ErrInvalidInput     ErrorKind = "invalid_input"
	ErrUpstreamFetch    ErrorKind = "upstream_fetch"
	ErrInsufficientData ErrorKind = "insufficient_data"
)

// CalcError is the typed failure carried by a Result.
type CalcError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *CalcError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewCalcError builds a CalcError with a formatted message.
func NewCalcError(kind ErrorKind, format string, args ...interface{}) *CalcError {
	return &CalcError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Result holds either a computed value or a CalcError, never both.
type Result[T any] struct {
	Value T
	Err   *CalcError
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fail wraps a failure.
func Fail[T any](err *CalcError) Result[T] {
	return Result[T]{Err: err}
}

// Failf builds a failure from a kind and formatted message.
func Failf[T any](kind ErrorKind, format string, args ...interface{}) Result[T] {
	return Result[T]{Err: NewCalcError(kind, format, args...)}
}

// IsOk reports whether the result carries a value.
func (r Result[T]) IsOk() bool {
	return r.Err == nil
}

// Unwrap returns the value and error pair.
func (r Result[T]) Unwrap() (T, *CalcError) {
	return r.Value, r.Err
}

type resultJSON struct {
	Status string      `json:"status"`
	Value  interface{} `json:"value,omitempty"`
	Error  *CalcError  `json:"error,omitempty"`
}

// MarshalJSON renders {"status":"ok","value":...} or {"status":"error","error":{...}}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(resultJSON{Status: "error", Error: r.Err})
	}
	return json.Marshal(resultJSON{Status: "ok", Value: r.Value})
}
