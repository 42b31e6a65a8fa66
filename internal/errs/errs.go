package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to tell bad input from system failure
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindInsufficientStock
	KindConflict
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error codes
const (
	CodeInvalidValue           = "InvalidValue"
	CodeInvalidCurrency        = "InvalidCurrency"
	CodeInvalidUsername        = "InvalidUsername"
	CodeInvalidEmail           = "InvalidEmail"
	CodeInvalidTransactionType = "InvalidTransactionType"
	CodeInvalidAdminStatus     = "InvalidAdminStatus"
	CodeInvalidEntityKind      = "InvalidEntityKind"
	CodeDuplicateUsername      = "DuplicateUsername"
	CodeDuplicateEmail         = "DuplicateEmail"
	CodeDuplicateCategoryName  = "DuplicateCategoryName"
	CodeDuplicateProductName   = "DuplicateProductName"
	CodeReservedName           = "ReservedName"
	CodeCategoryCycle          = "CategoryCycle"
	CodeImmutableTransaction   = "ImmutableTransaction"
	CodeInvalidCredentials     = "InvalidCredentials"
	CodeProductNotFound        = "ProductNotFound"
	CodeCategoryNotFound       = "CategoryNotFound"
	CodeUserNotFound           = "UserNotFound"
	CodeNotFound               = "NotFound"
	CodeInsufficientStock      = "InsufficientStock"
	CodeConcurrentUpdate       = "ConcurrentUpdate"
	CodeUniqueViolation        = "UniqueViolation"
	CodeStorage                = "StorageFailure"
	CodeCancelled              = "Cancelled"
)

// Error is the structured error returned by every core operation
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind != KindPersistence {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, and by code when the target carries one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Kind sentinels for errors.Is
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrPersistence       = &Error{Kind: KindPersistence}
)

func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientStock, Code: CodeInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a storage failure. The message stays generic so connection
// details in err never reach clients.
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Code: CodeStorage, Message: "storage failure during " + op, Err: err}
}

// Cancelled reports a unit of work abandoned because its context ended
func Cancelled(err error) *Error {
	return &Error{Kind: KindPersistence, Code: CodeCancelled, Message: "operation cancelled before commit", Err: err}
}

// Code returns a matcher for errors.Is on a specific code.
func Code(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// KindOf returns the kind of err, KindPersistence for foreign errors and 0 for nil.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// CodeOf returns the code of err or CodeStorage for foreign errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if err == nil {
		return ""
	}
	return CodeStorage
}

// PublicMessage is the text that may be shown to an API caller.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Wrap converts foreign errors into persistence errors and passes *Error through.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Persistence(op, err)
}
