package schema

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies configuration failures.
type ErrorCategory string

const CategoryConfig ErrorCategory = "CONFIG"

// Error codes.
const (
	CodeTargetNotFound    = "TARGET_NOT_FOUND"
	CodeInvalidLimits     = "INVALID_LIMITS"
	CodeEmptyDataset      = "EMPTY_DATASET"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeInvalidOption     = "INVALID_OPTION"
)

// Sentinels for errors.Is. Matching is by category and code.
var (
	ErrTargetNotFound    = &ConfigError{Category: CategoryConfig, Code: CodeTargetNotFound}
	ErrInvalidLimits     = &ConfigError{Category: CategoryConfig, Code: CodeInvalidLimits}
	ErrEmptyDataset      = &ConfigError{Category: CategoryConfig, Code: CodeEmptyDataset}
	ErrUnsupportedFormat = &ConfigError{Category: CategoryConfig, Code: CodeUnsupportedFormat}
	ErrInvalidOption     = &ConfigError{Category: CategoryConfig, Code: CodeInvalidOption}
)

// ConfigError aborts a pass before any chart is planned.
type ConfigError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *ConfigError {
	return &ConfigError{Category: CategoryConfig, Code: code, Message: message}
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// Is reports whether target has the same category and code.
func (e *ConfigError) Is(target error) bool {
	var t *ConfigError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// WithDetails returns a copy of the error with details attached.
func (e *ConfigError) WithDetails(details map[string]interface{}) *ConfigError {
	cp := *e
	cp.Details = details
	return &cp
}

// IsConfigError reports whether err (or its chain) is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
