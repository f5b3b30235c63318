package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current state")

// ErrForbidden indicates the caller may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected failure in a collaborator (store, clock, ...).
var ErrInternal = errors.New("internal error")

// ErrTransient marks a store failure that is safe to retry, such as a
// serialization failure, a deadlock or a busy database.
var ErrTransient = errors.New("transient store failure")

// LedgerError is a named ledger rule violation. It unwraps to its kind
// (ErrValidation, ErrDuplicate, ErrConflict) so callers can match either
// the precise rule or the broad category with errors.Is.
type LedgerError struct {
	name string
	kind error
}

func newLedgerError(name string, kind error) *LedgerError {
	return &LedgerError{name: name, kind: kind}
}

func (e *LedgerError) Error() string { return e.name }

// Unwrap returns the error kind.
func (e *LedgerError) Unwrap() error { return e.kind }

// Ledger rule violations.
var (
	ErrDuplicateCode         = newLedgerError("account code already exists for company", ErrDuplicate)
	ErrInvalidParent         = newLedgerError("parent account is missing or belongs to another company", ErrValidation)
	ErrVoucherNotDraft       = newLedgerError("voucher is not in draft status", ErrValidation)
	ErrVoucherNotPosted      = newLedgerError("voucher is not posted", ErrValidation)
	ErrInvalidLine           = newLedgerError("entry must carry exactly one non-negative amount", ErrValidation)
	ErrInactiveAccount       = newLedgerError("account is inactive", ErrValidation)
	ErrControlAccountPosting = newLedgerError("control accounts cannot receive postings", ErrValidation)
	ErrUnbalanced            = newLedgerError("voucher debits and credits do not balance", ErrValidation)
	ErrEmptyVoucher          = newLedgerError("voucher has no entries", ErrValidation)
	ErrNatureLocked          = newLedgerError("account nature cannot change once postings reference it", ErrValidation)
	ErrAccountHasPostings    = newLedgerError("account is referenced by voucher entries", ErrConflict)
	ErrAlreadyReversed       = newLedgerError("voucher has already been reversed", ErrConflict)
)

// AppError carries an HTTP-ish status code with an underlying cause. It is
// used for infrastructure failures that do not fit a ledger rule.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return kindForCode(e.Code)
}

// Is lets errors.Is(appErr, ErrInternal) match on the status code even when
// the wrapped cause is a driver error.
func (e *AppError) Is(target error) bool {
	return target == kindForCode(e.Code)
}

func kindForCode(code int) error {
	switch code {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation
	case http.StatusConflict:
		return ErrConflict
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return ErrInternal
	}
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError wraps ErrNotFound with the name of the missing entity.
func NewNotFoundError(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

// NewInternalServerError wraps an unexpected failure.
func NewInternalServerError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, message, err)
}

// HTTPStatus maps an error to the response status used by the API.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
