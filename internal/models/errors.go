package models

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrToolNotFound       = errors.New("tool not found")
	ErrDuplicateTool      = errors.New("tool already registered")
	ErrRegistryFrozen     = errors.New("tool registry is frozen")
	ErrNoAnswer           = errors.New("agent returned no answer")
	ErrConversionDisabled = errors.New("pdf conversion disabled")
)

// ReportErrorKind names the report step that failed
type ReportErrorKind string

const (
	ReportErrorMarkdown ReportErrorKind = "markdown"
	ReportErrorConvert  ReportErrorKind = "convert"
	ReportErrorOpen     ReportErrorKind = "open"
)

// ReportError is returned when a report step fails. Kind tells the caller how
// far the write got.
type ReportError struct {
	Kind    ReportErrorKind
	Message string
	Err     error
}

func (e *ReportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("report %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("report %s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *ReportError) Unwrap() error { return e.Err }

// WriteError writes a plain-text error. Used by middleware that short-circuits
// before a page handler runs.
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	fmt.Fprintf(w, "error: %s\n", message)
}
