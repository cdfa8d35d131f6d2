package tts

import (
	"errors"
	"fmt"
)

// Kind classifies a synthesis failure so callers can decide whether to
// retry, fall back to another voice, or give up.
type Kind int

const (
	// KindValidation marks bad input: empty text, unknown backend, empty
	// voice. Never retried.
	KindValidation Kind = iota
	// KindAuth marks a rejected or unparseable token exchange.
	KindAuth
	// KindNetwork marks connect/DNS/reset failures. Retryable by the caller.
	KindNetwork
	// KindSynthesis marks a turn that ended in a provider error, a missing
	// turn.end, or a protocol violation. Triggers voice fallback.
	KindSynthesis
	// KindIO marks a local file read/write failure.
	KindIO
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindSynthesis:
		return "synthesis"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Common errors for the TTS system.
var (
	ErrEmptyText      = errors.New("text must not be empty")
	ErrEmptyVoice     = errors.New("voice must not be empty")
	ErrUnknownBackend = errors.New("unknown backend")
	ErrUnknownFormat  = errors.New("unknown audio format")
	ErrNoAudio        = errors.New("no audio data generated")
	ErrTurnTimeout    = errors.New("turn.end not received before timeout")
	ErrTokenRejected  = errors.New("token endpoint rejected the request")
	ErrCatalogMissing = errors.New("voice catalog file not found")
)

// Error carries the failure classification along with the operation and
// voice that produced it, so a failed synthesis can report which voice was
// tried and the underlying provider error text.
type Error struct {
	Kind  Kind
	Op    string // operation being performed, e.g. "synthesize"
	Voice string // voice in use when the failure occurred, if any
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Voice != "" {
		return fmt.Sprintf("%s: %s: voice %q: %v", e.Kind, e.Op, e.Voice, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// NewError creates a classified error for the given operation.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithVoice records the voice that was in use when the failure occurred.
func (e *Error) WithVoice(voice string) *Error {
	e.Voice = voice
	return e
}

// IsKind reports whether err (or anything it wraps) is a TTS error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

// Retryable reports whether the error is worth retrying at the caller's
// discretion. Validation and IO failures never are.
func Retryable(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == KindNetwork || te.Kind == KindAuth
	}
	return false
}
