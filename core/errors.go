package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return "validation failed"
	}
	return err.Err.Error()
}

func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// ErrorKind classifies the errors a core operation reports to its caller.
type ErrorKind int

const (
	KindAuthentication ErrorKind = iota + 1
	KindAuthorization
	KindNotFound
	KindInvalidState
	KindConflict
	KindPaymentRequired
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not found"
	case KindInvalidState:
		return "invalid state"
	case KindConflict:
		return "conflict"
	case KindPaymentRequired:
		return "payment required"
	default:
		return "unknown"
	}
}

// KindError carries a user facing message.
type KindError struct {
	Kind    ErrorKind
	Message string
}

func (err *KindError) Error() string {
	return err.Message
}

func newKindError(kind ErrorKind, format string, args []interface{}) error {
	return &KindError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewAuthenticationError(format string, args ...interface{}) error {
	return newKindError(KindAuthentication, format, args)
}

func NewAuthorizationError(format string, args ...interface{}) error {
	return newKindError(KindAuthorization, format, args)
}

func NewNotFoundError(format string, args ...interface{}) error {
	return newKindError(KindNotFound, format, args)
}

func NewInvalidStateError(format string, args ...interface{}) error {
	return newKindError(KindInvalidState, format, args)
}

func NewConflictError(format string, args ...interface{}) error {
	return newKindError(KindConflict, format, args)
}

func NewPaymentRequiredError(format string, args ...interface{}) error {
	return newKindError(KindPaymentRequired, format, args)
}

// KindOf returns the ErrorKind of err's cause, 0 if it has none.
func KindOf(err error) ErrorKind {
	if kerr, ok := errors.Cause(err).(*KindError); ok {
		return kerr.Kind
	}
	return 0
}

func IsAuthentication(err error) bool  { return KindOf(err) == KindAuthentication }
func IsAuthorization(err error) bool   { return KindOf(err) == KindAuthorization }
func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsInvalidState(err error) bool    { return KindOf(err) == KindInvalidState }
func IsConflict(err error) bool        { return KindOf(err) == KindConflict }
func IsPaymentRequired(err error) bool { return KindOf(err) == KindPaymentRequired }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
