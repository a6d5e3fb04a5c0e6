package models

import (
	"errors"
	"fmt"
)

// Business error kinds. They are recoverable by the caller and are rendered
// as user-facing messages at the transport boundary.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrNoOp         = errors.New("nothing to do")
	ErrNotVisible   = errors.New("not visible")
	ErrInvalidInput = errors.New("invalid input")
)

// ErrReferenceData signals that seeded status/result rows are missing or do
// not match the compiled vocabularies. It is never a business error.
var ErrReferenceData = errors.New("reference data mismatch")

type DomainError struct {
	Op      string // e.g. "SetResult", "FinalizeResults"
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

func NewDomainError(op string, kind error, message string) *DomainError {
	return &DomainError{Op: op, Kind: kind, Message: message}
}

func WrapError(op string, kind error, message string, err error) *DomainError {
	return &DomainError{Op: op, Kind: kind, Message: message, Err: err}
}

var businessKinds = []error{
	ErrNotFound,
	ErrForbidden,
	ErrConflict,
	ErrInvalidState,
	ErrNoOp,
	ErrNotVisible,
	ErrInvalidInput,
}

// KindOf returns the business kind err belongs to, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range businessKinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// IsBusiness reports whether err belongs to the business taxonomy. Anything
// else is an infrastructure failure.
func IsBusiness(err error) bool {
	return KindOf(err) != nil
}

// Message returns the user-facing message of a domain error, or a generic
// one for anything else.
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "Something went wrong, try again shortly."
}
