package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error is a business-rule rejection carrying a stable code for API clients
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches errors by code so sentinels work with errors.Is after wrapping
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel errors; use errors.Is to test, Errorf to attach detail.
var (
	ErrValidation        = &Error{Code: "VALIDATION_ERROR", Message: "invalid input"}
	ErrNotFound          = &Error{Code: "NOT_FOUND", Message: "record not found"}
	ErrInvalidTransition = &Error{Code: "INVALID_TRANSITION", Message: "status change not allowed"}
	ErrOrderClosed       = &Error{Code: "ORDER_CLOSED", Message: "order is delivered or cancelled"}
	ErrOverpayment       = &Error{Code: "OVERPAYMENT", Message: "payment exceeds balance due"}
	ErrInvoiceLocked     = &Error{Code: "INVOICE_LOCKED", Message: "invoice can no longer be changed"}
	ErrInsufficientStock = &Error{Code: "INSUFFICIENT_STOCK", Message: "not enough stock"}
	ErrProductInUse      = &Error{Code: "PRODUCT_IN_USE", Message: "product is used by existing jobs"}
	ErrUserExists        = &Error{Code: "USER_EXISTS", Message: "username or email already registered"}
	ErrInvalidLogin      = &Error{Code: "INVALID_CREDENTIALS", Message: "invalid username or password"}
	ErrUserInactive      = &Error{Code: "ACCOUNT_DISABLED", Message: "account is deactivated"}
)

// Errorf returns a copy of the sentinel with a formatted message
func Errorf(sentinel *Error, format string, args ...interface{}) *Error {
	return &Error{Code: sentinel.Code, Message: fmt.Sprintf(format, args...)}
}

// notFound converts gorm.ErrRecordNotFound into a coded not-found error for entity
func notFound(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{
			Code:    strings.ToUpper(entity) + "_NOT_FOUND",
			Message: fmt.Sprintf("%s %d not found", entity, id),
		}
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

// IsNotFound reports whether err is any *_NOT_FOUND service error
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && strings.HasSuffix(se.Code, "NOT_FOUND")
}

// isUniqueViolation reports whether err came from a unique index
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
