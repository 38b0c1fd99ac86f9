package errlog

import (
	"fmt"
	"strings"
)

// Error kinds for the different stages of mode compilation and transcription
const (
	// Structural problems in mode or charset documents
	KindParse = "PARSE_ERROR"

	// Variable and unicode-escape resolution failures
	KindResolution = "RESOLUTION_ERROR"

	// Rule compilation failures (prototypes, duplicates, schemas, macros)
	KindCompile = "COMPILE_ERROR"

	// Charset lookup failures
	KindCharset = "CHARSET_ERROR"

	// Non-fatal post-processing problems (unmapped tokens)
	KindRuntimeWarning = "RUNTIME_WARNING"
)

// Error represents a structured error with kind and source line context
type Error struct {
	Kind    string
	Line    int
	Message string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New creates a new Error
func New(kind string, line int, message string) *Error {
	return &Error{Kind: kind, Line: line, Message: message}
}

// Newf creates a new Error with a formatted message
func Newf(kind string, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// IsKind checks if an error is of a specific kind
func IsKind(err error, kind string) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}

// Log accumulates errors and warnings during mode finalization and
// transcription. Warnings never make the log fatal.
type Log struct {
	errors   []*Error
	warnings []*Error
}

// Append adds an error to the log. Runtime warnings are tracked separately
// and do not make the log fatal.
func (l *Log) Append(e *Error) {
	if e == nil {
		return
	}
	if e.Kind == KindRuntimeWarning {
		l.warnings = append(l.warnings, e)
		return
	}
	l.errors = append(l.errors, e)
}

// Appendf builds an error and adds it to the log
func (l *Log) Appendf(kind string, line int, format string, args ...any) {
	l.Append(Newf(kind, line, format, args...))
}

// Extend appends all given errors
func (l *Log) Extend(errs []*Error) {
	for _, e := range errs {
		l.Append(e)
	}
}

// HasErrors reports whether any fatal error was logged
func (l *Log) HasErrors() bool {
	return len(l.errors) > 0
}

// Errors returns the fatal errors in append order
func (l *Log) Errors() []*Error {
	return l.errors
}

// Warnings returns the runtime warnings in append order
func (l *Log) Warnings() []*Error {
	return l.warnings
}

// Err collapses the log into a single error value, nil when no fatal error
// was logged.
func (l *Log) Err() error {
	if !l.HasErrors() {
		return nil
	}
	msgs := make([]string, len(l.errors))
	for i, e := range l.errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "\n"))
}
