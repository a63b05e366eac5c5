// Package apperr carries the service's closed error taxonomy. Callers
// dispatch on the kind instead of matching error types or strings.
package apperr

import "errors"

type Kind int

const (
	// KindUnknown covers infrastructure failures that have no business code.
	KindUnknown Kind = iota
	// KindNotFound: conversation, user or message missing.
	KindNotFound
	// KindNoAuth: caller lacks required membership, ownership or friendship.
	KindNoAuth
	// KindOperation: invalid state transition (double dissolve, duplicate
	// membership, inactive conversation).
	KindOperation
	// KindParams: blank content, missing identifiers.
	KindParams
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindNoAuth:
		return "NO_AUTH"
	case KindOperation:
		return "OPERATION_ERROR"
	case KindParams:
		return "PARAMS_ERROR"
	default:
		return "UNKNOWN"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error  { return New(KindNotFound, message) }
func NoAuth(message string) *Error    { return New(KindNoAuth, message) }
func Operation(message string) *Error { return New(KindOperation, message) }
func Params(message string) *Error    { return New(KindParams, message) }

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
