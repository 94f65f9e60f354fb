package errors

import (
	"errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

// ConflictError covers state-machine violations: transitions not reachable
// from the current estado, or marking a comanda paid before it completes.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// InsufficientStockError carries the stock the product currently has so the
// caller can decide whether a smaller retry makes sense.
type InsufficientStockError struct {
	Message   string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s (available: %d)", e.Message, e.Available)
}

func NewInsufficientStockError(message string, available int) *InsufficientStockError {
	return &InsufficientStockError{Message: message, Available: available}
}

func IsInsufficientStockError(err error) (*InsufficientStockError, bool) {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

type InactiveProductError struct {
	Message string
}

func (e *InactiveProductError) Error() string {
	return e.Message
}

func NewInactiveProductError(message string) *InactiveProductError {
	return &InactiveProductError{Message: message}
}

func IsInactiveProductError(err error) (*InactiveProductError, bool) {
	var ipe *InactiveProductError
	if errors.As(err, &ipe) {
		return ipe, true
	}
	return nil, false
}

// DeadlockError is returned after the retry budget for MySQL lock conflicts
// is exhausted.
type DeadlockError struct {
	Message string
}

func (e *DeadlockError) Error() string {
	return e.Message
}

func NewDeadlockError(message string) *DeadlockError {
	return &DeadlockError{Message: message}
}

func IsDeadlockError(err error) (*DeadlockError, bool) {
	var de *DeadlockError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}
