package matcher

import "errors"

// ErrTimeout and ErrEOF are internal sentinels; netcli wraps them into its
// public error kinds (ErrTimeout, ErrEOF) when surfacing Run's result.
var (
	ErrTimeout = errors.New("matcher: deadline elapsed with no match")
	ErrEOF     = errors.New("matcher: channel closed before a match")
)

// TransportError wraps an I/O failure observed while draining the reader.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "matcher: transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
