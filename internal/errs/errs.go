// Package errs defines the error kinds shared across the rainbow-table
// engine: invalid configuration, refused oversized search spaces,
// executor failures (transient vs fatal), corrupted on-disk tables, and
// the distinguished not-found outcome of a failed attack.
package errs

import "fmt"

// Kind classifies an engine error for callers that need to branch on it
// (the CLI maps kinds to process exit codes).
type Kind int

const (
	// InvalidParameter covers bad table configuration: empty charset,
	// L > 32, t == 0, unknown hash kind, malformed digest hex.
	InvalidParameter Kind = iota
	// SearchSpaceOverflow means the configured charset/length would make
	// N exceed 2^64; refused at config time, never at runtime.
	SearchSpaceOverflow
	// ExecutorTransient covers GPU OOM / device-reset style failures
	// that the pipeline retries with a halved batch before falling back
	// to the CPU executor.
	ExecutorTransient
	// ExecutorFatal covers unrecoverable executor failures: wrong
	// driver, permission denied, no such device.
	ExecutorFatal
	// CorruptedTable covers a bad magic, truncated file, or an
	// out-of-range index encountered while decoding a table.
	CorruptedTable
	// NotFound is not an error condition in the Go sense — it is the
	// attack engine's distinguished "exhausted all columns/tables"
	// outcome, kept here so callers can use errors.Is uniformly.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidParameter:
		return "InvalidParameter"
	case SearchSpaceOverflow:
		return "SearchSpaceOverflow"
	case ExecutorTransient:
		return "ExecutorTransient"
	case ExecutorFatal:
		return "ExecutorFatal"
	case CorruptedTable:
		return "CorruptedTable"
	case NotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// Error is a typed engine error. Wrap with fmt.Errorf("...: %w", err) to
// add context while keeping errors.Is/errors.As working against Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, errs.ErrNotFound) work by comparing on Kind
// when the target is itself a *Error; its Msg and Err are ignored (see
// the sentinels at the end of this file).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinels usable with errors.Is(err, errs.ErrNotFound).
var (
	ErrNotFound            = &Error{Kind: NotFound, Msg: "not found"}
	ErrSearchSpaceOverflow  = &Error{Kind: SearchSpaceOverflow, Msg: "search space overflow"}
)
