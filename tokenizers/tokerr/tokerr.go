// Package tokerr defines the error taxonomy shared by every tokenizer
// package: construction-time failures (file not found, vocabulary doesn't
// parse), per-call failures (truncation over cap with no policy to resolve
// it), and the internal-invariant-violation class that should never surface
// for valid input.
package tokerr

import "github.com/pkg/errors"

// Kind classifies a tokenizer error so callers can branch on it with
// errors.As / Is without parsing the message.
type Kind int

const (
	// FileNotFound: a referenced vocab/merge/piece file is missing.
	FileNotFound Kind = iota
	// VocabularyParsing: a file exists but doesn't parse, or lacks a
	// required entry (e.g. the unknown token isn't present).
	VocabularyParsing
	// Value: a configuration inconsistency, e.g. DoNotTruncate with an
	// over-cap input.
	Value
	// Tokenization: an internal invariant was violated during
	// segmentation. Should never occur for valid input; indicates a bug.
	Tokenization
)

func (k Kind) String() string {
	switch k {
	case FileNotFound:
		return "FileNotFound"
	case VocabularyParsing:
		return "VocabularyParsingError"
	case Value:
		return "ValueError"
	case Tokenization:
		return "TokenizationError"
	default:
		return "UnknownError"
	}
}

// Error wraps a Kind with a message and optional cause, so errors.Cause
// still reaches the underlying I/O or parse error.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.String() + ": " + e.msg + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, tokerr.New(tokerr.FileNotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs a Kind-tagged error with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error()}
}

// Wrap attaches kind and a message to an existing error, preserving it as
// the Unwrap() cause.
func Wrap(cause error, kind Kind, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error(), cause: cause}
}

// Is reports whether err is a tokerr.Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
