// Package tberrors defines the error-kind taxonomy from spec §7, shared
// by every internal package so the root Application can route a single,
// human-readable message to the caller-supplied onError callback without
// losing the ability for Go callers to errors.Is/errors.As against a
// specific kind.
package tberrors

// Kind names one of the error categories spec §7 enumerates.
type Kind string

const (
	StyleNotReadable  Kind = "StyleNotReadable"
	StyleParseFailed  Kind = "StyleParseFailed"
	ShpOpenFailed     Kind = "ShpOpenFailed"
	DbfNoFields       Kind = "DbfNoFields"
	DbfCountMismatch  Kind = "DbfCountMismatch"
	ShapeReadFailed   Kind = "ShapeReadFailed"
	UnsupportedShape  Kind = "UnsupportedShape"
	UnknownRoofType   Kind = "UnknownRoofType"
	UnknownFacadeType Kind = "UnknownFacadeType"
	MalformedRelation Kind = "MalformedRelation"
	StoreIOError      Kind = "StoreIoError"
	StoreCorrupt      Kind = "StoreCorrupt"
	InvalidQuadKey    Kind = "InvalidQuadKey"
	InvalidLodRange   Kind = "InvalidLodRange"
)

// Error wraps an underlying error with a Kind, so the message passed to
// onError always contains the kind name (spec Testable Property: S5,
// "onError fires with a message containing 'UnknownRoofType'") while
// errors.Is/errors.As still work against the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New creates a *Error with just a kind and message, no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates a *Error that wraps an existing error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Msg + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error with the same Kind, so
// errors.Is(err, tberrors.New(tberrors.UnknownRoofType, "")) works without
// callers needing the original message or wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
