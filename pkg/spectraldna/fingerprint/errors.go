package fingerprint

import "errors"

// Kind is a stable category for programmatic error handling.
// Callers should branch on Kind (or errors.Is with the sentinels below)
// rather than matching error strings.
type Kind string

const (
	KindInvalidInput  Kind = "InvalidInput"
	KindSerialization Kind = "SerializationError"
)

var (
	// ErrInvalidInput matches every error of KindInvalidInput.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSerialization matches every error of KindSerialization.
	ErrSerialization = errors.New("serialization error")
)

// Error is the structured error returned by the pipeline.
type Error struct {
	Kind    Kind
	Field   string // offending field, e.g. "peaks[2]"; empty when not field-specific
	Message string
	Cause   error

	// nonFinite marks serialization failures caused by NaN/Inf values,
	// which also count as invalid input.
	nonFinite bool
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind) + ": "
	if e.Field != "" {
		msg += e.Field + ": "
	}
	msg += e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is lets errors.Is(err, ErrInvalidInput) and errors.Is(err, ErrSerialization)
// match on Kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput || e.nonFinite
	case ErrSerialization:
		return e.Kind == KindSerialization
	}
	return false
}

func invalidInput(field, msg string) error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: msg}
}

func wrapInvalidInput(field, msg string, cause error) error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
