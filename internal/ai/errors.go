package ai

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindTransport
	KindUpstream
	KindProtocol
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindUpstream:
		return "upstream"
	case KindProtocol:
		return "protocol"
	case KindRateLimit:
		return "rate limit"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against an *Error's kind.
var (
	ErrConfiguration = errors.New("ai: configuration error")
	ErrTransport     = errors.New("ai: transport error")
	ErrUpstream      = errors.New("ai: upstream error")
	ErrProtocol      = errors.New("ai: protocol error")
	ErrRateLimit     = errors.New("ai: rate limit exceeded")
)

// Error is returned by every Provider operation.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels. A 429 from the remote API is both an
// upstream error and a rate limit.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrUpstream:
		return e.Kind == KindUpstream || (e.Kind == KindRateLimit && e.StatusCode != 0)
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrRateLimit:
		return e.Kind == KindRateLimit
	}
	return false
}

// upstreamError builds the error for an HTTP status >= 400. The message
// keeps the remote explanation when one was decoded.
func upstreamError(op string, status int, remote string) *Error {
	msg := fmt.Sprintf("API error (%d)", status)
	if remote != "" {
		msg += ": " + remote
	}
	kind := KindUpstream
	if status == 429 {
		kind = KindRateLimit
	}
	return &Error{Kind: kind, Op: op, StatusCode: status, Message: msg}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
