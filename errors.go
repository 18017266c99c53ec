package httpcore

import (
	"errors"
	"strings"
)

// Parser and framing errors (spec §4.3, §7).
var (
	// ErrMalformedStartLine is returned when the request line does not
	// split into exactly three space-separated tokens.
	ErrMalformedStartLine = errors.New("httpcore: malformed start line")

	// ErrMalformedHeader is returned when a header line has no colon.
	ErrMalformedHeader = errors.New("httpcore: malformed header")

	// ErrIncompleteRequest is not a failure: the accumulator does not yet
	// hold a full request and the connection should keep reading.
	ErrIncompleteRequest = errors.New("httpcore: incomplete request")

	// ErrMalformedFraming covers conflicting/invalid Content-Length and
	// broken chunked framing. Fatal for the connection.
	ErrMalformedFraming = errors.New("httpcore: malformed framing")

	// ErrLineTooLong guards against unbounded chunk-size lines.
	ErrLineTooLong = errors.New("httpcore: chunk line too long")
)

// ErrPoolRejected names a WorkerPool rejection. Submit never returns it and
// onReject takes no arguments: rejection is signalled only by the
// synchronous onReject call (spec §4.2).
var ErrPoolRejected = errors.New("httpcore: worker pool rejected task")

// ErrResponseAlreadySent names the state of a Response whose body was
// already flushed and reset. Response.Send does not return it: a repeated
// Send is a no-op that returns nil.
var ErrResponseAlreadySent = errors.New("httpcore: response already sent")

// HandlerError wraps a panic or error surfaced by user handler code so
// EventLoop.process, which recovers the panic and emits a 500 if nothing was
// sent yet, can log it with context (spec §7, HandlerException disposition).
type HandlerError struct {
	Path string
	Err  error
}

func (e *HandlerError) Error() string {
	return "httpcore: handler error on " + e.Path + ": " + e.Err.Error()
}

func (e *HandlerError) Unwrap() error { return e.Err }

// isBenignWriteError classifies boundary I/O errors by their message text
// into benign (client already gone) vs actionable. A known benign phrase may
// appear anywhere in the message, since Go prefixes it with the operation
// and addresses (e.g. "write tcp ...: broken pipe").
func isBenignWriteError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, sub := range []string{"broken pipe", "connection reset", "use of closed network connection", "EPIPE", "ECONNRESET"} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
