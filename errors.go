package nmo

import (
	"errors"
	"fmt"
)

// Kind classifies the failure modes the core distinguishes. Callers use
// KindOf, or errors.Is against the Err* sentinels at the end of this
// file, rather than string matching.
type Kind int

const (
	// KindInvalidArgument marks a null or nonsensical input at an API boundary.
	KindInvalidArgument Kind = iota + 1

	// KindInvalidSignature marks a Part0 magic byte mismatch.
	KindInvalidSignature

	// KindUnsupportedVersion marks a file_version outside [2,9].
	KindUnsupportedVersion

	// KindInvalidFormat marks inconsistent size/length fields or a truncated stream.
	KindInvalidFormat

	// KindEOF marks a premature end of stream where more bytes were expected.
	KindEOF

	// KindIO marks a read/write/close error surfaced by the I/O port.
	KindIO

	// KindCompressionError marks a deflate/inflate failure.
	KindCompressionError

	// KindOutOfMemory marks an arena allocation failure.
	KindOutOfMemory

	// KindNotFound marks a remap, resolver, or registry lookup miss.
	KindNotFound

	// KindInvalidState marks a pipeline phase invoked out of order, a
	// duplicate file_id within a load session, or a write after finalize.
	KindInvalidState

	// KindValidationFailed marks a schema-level field read/write failure.
	KindValidationFailed

	// KindMissingPlugin marks a strict plugin check refusing to load.
	KindMissingPlugin
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindInvalidSignature:
		return "invalid signature"
	case KindUnsupportedVersion:
		return "unsupported version"
	case KindInvalidFormat:
		return "invalid format"
	case KindEOF:
		return "unexpected eof"
	case KindIO:
		return "io error"
	case KindCompressionError:
		return "compression error"
	case KindOutOfMemory:
		return "out of memory"
	case KindNotFound:
		return "not found"
	case KindInvalidState:
		return "invalid state"
	case KindValidationFailed:
		return "validation failed"
	case KindMissingPlugin:
		return "missing plugin"
	default:
		return "unknown error"
	}
}

// Error is the single error type returned across the codec. It carries a
// Kind for programmatic dispatch, an optional causing error, and a short
// human message describing where it occurred.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrNotFound) (or any other *Error target) match
// by Kind alone; the target's Op, Message and Cause are ignored.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func newErr(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

func wrapErr(kind Kind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: msg, Cause: cause}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// sentinels usable with errors.Is(err, nmo.ErrNotFound) etc. without
// needing the caller to extract a Kind first.
var (
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument, Op: "nmo", Message: "invalid argument"}
	ErrInvalidSignature   = &Error{Kind: KindInvalidSignature, Op: "nmo", Message: "invalid signature"}
	ErrUnsupportedVersion = &Error{Kind: KindUnsupportedVersion, Op: "nmo", Message: "unsupported version"}
	ErrInvalidFormat      = &Error{Kind: KindInvalidFormat, Op: "nmo", Message: "invalid format"}
	ErrEOF                = &Error{Kind: KindEOF, Op: "nmo", Message: "unexpected eof"}
	ErrIO                 = &Error{Kind: KindIO, Op: "nmo", Message: "io error"}
	ErrCompression        = &Error{Kind: KindCompressionError, Op: "nmo", Message: "compression error"}
	ErrOutOfMemory        = &Error{Kind: KindOutOfMemory, Op: "nmo", Message: "out of memory"}
	ErrNotFound           = &Error{Kind: KindNotFound, Op: "nmo", Message: "not found"}
	ErrInvalidState       = &Error{Kind: KindInvalidState, Op: "nmo", Message: "invalid state"}
	ErrValidationFailed   = &Error{Kind: KindValidationFailed, Op: "nmo", Message: "validation failed"}
	ErrMissingPlugin      = &Error{Kind: KindMissingPlugin, Op: "nmo", Message: "missing plugin"}
)
