// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrIncompleteFields      = errors.New("required signal fields missing")
	ErrUnsupportedInstrument = errors.New("unsupported instrument")
	ErrNoiseMatch            = errors.New("message matched noise filter")
	ErrExpiryResolution      = errors.New("expiry resolution failed")
	ErrDuplicateSignal       = errors.New("duplicate signal within dedup window")
	ErrMarketDataUnavailable = errors.New("market data unavailable")
	ErrInvalidRiskConfig     = errors.New("invalid risk configuration")
	ErrSymbolNotFound        = errors.New("symbol not found")
	ErrConfigInvalid         = errors.New("invalid configuration")
	ErrDatabaseError         = errors.New("database error")
	ErrMarketClosed          = errors.New("market is closed")
	ErrOrderRejected         = errors.New("order rejected")
)

// ParseError reports why a signal candidate was dropped during extraction.
// It wraps one of the parse sentinels and carries the offending text for
// the audit log.
type ParseError struct {
	Reason  error  // one of the Err* parse sentinels
	Raw     string // the buffer that failed
	Missing []string
}

func (e *ParseError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("parse error: %v (missing %v)", e.Reason, e.Missing)
	}
	return fmt.Sprintf("parse error: %v", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Reason
}

// NewParseError creates a new ParseError.
func NewParseError(reason error, raw string, missing ...string) *ParseError {
	return &ParseError{Reason: reason, Raw: raw, Missing: missing}
}

// BrokerError represents an error from the broker API.
type BrokerError struct {
	Code    string
	Message string
	Err     error
}

func (e *BrokerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("broker error [%s]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("broker error [%s]: %s", e.Code, e.Message)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}

// NewBrokerError creates a new BrokerError.
func NewBrokerError(code, message string, err error) *BrokerError {
	return &BrokerError{Code: code, Message: message, Err: err}
}

// ValidationError represents a validation error on a built intent.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
