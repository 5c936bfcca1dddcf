package pipeline

import (
	"errors"
	"net/http"
	"strings"
)

// MissingInputError reports a request without documents or without a question.
type MissingInputError struct {
	Field   string
	Message string
}

func (e *MissingInputError) Error() string { return e.Message }

// ErrNoContent means none of the documents produced any text.
var ErrNoContent = errors.New("no text could be extracted from documents")

// CompletionError wraps a completion provider failure. It always fails the
// request.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string { return "completion provider error: " + e.Err.Error() }
func (e *CompletionError) Unwrap() error { return e.Err }

// SynthesisError wraps a synthesis provider failure. It never fails the
// request; it travels inside QueryResult next to the answer.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	if e.Err == nil || strings.TrimSpace(e.Err.Error()) == "" {
		return "speech synthesis failed"
	}
	return e.Err.Error()
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// StatusCode maps an error returned by HandleQuery to an HTTP status.
func StatusCode(err error) int {
	var missing *MissingInputError
	var completion *CompletionError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &missing), errors.Is(err, ErrNoContent):
		return http.StatusBadRequest
	case errors.As(err, &completion):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
