package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Simulation core errors, never retried
	ErrorCategoryInsufficientData   ErrorCategory = "INSUFFICIENT_DATA"
	ErrorCategoryInvalidHorizon     ErrorCategory = "INVALID_HORIZON"
	ErrorCategoryMissingCalibration ErrorCategory = "MISSING_CALIBRATION"
	ErrorCategoryInvalidParameter   ErrorCategory = "INVALID_PARAMETER"
	ErrorCategoryCanceled           ErrorCategory = "CANCELED"

	// Collaborator errors (quotes, history, files)
	ErrorCategoryNetwork       ErrorCategory = "NETWORK"
	ErrorCategoryTimeout       ErrorCategory = "TIMEOUT"
	ErrorCategoryRateLimit     ErrorCategory = "RATE_LIMIT"
	ErrorCategoryExchange      ErrorCategory = "EXCHANGE"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryTemporary     ErrorCategory = "TEMPORARY"
)

// SimError represents a categorized error with context
type SimError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
}

// Error implements the error interface
func (e *SimError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *SimError) Unwrap() error {
	return e.Underlying
}

// IsCore reports whether the error was raised by the simulation core
func (e *SimError) IsCore() bool {
	switch e.Category {
	case ErrorCategoryInsufficientData, ErrorCategoryInvalidHorizon,
		ErrorCategoryMissingCalibration, ErrorCategoryInvalidParameter, ErrorCategoryCanceled:
		return true
	}
	return false
}

// NewSimError creates a new categorized error
func NewSimError(category ErrorCategory, component, operation, message string) *SimError {
	return &SimError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with simulation error context
func WrapError(err error, category ErrorCategory, component, operation string) *SimError {
	if err == nil {
		return nil
	}

	return &SimError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *SimError) WithContext(key string, value interface{}) *SimError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Common error constructors
func NewInsufficientDataError(component, operation string, points int) *SimError {
	return NewSimError(ErrorCategoryInsufficientData, component, operation,
		fmt.Sprintf("need at least 2 price points, got %d", points)).
		WithContext("points", points)
}

func NewInvalidHorizonError(component, operation string, months int) *SimError {
	return NewSimError(ErrorCategoryInvalidHorizon, component, operation,
		fmt.Sprintf("horizon must be at least 1 month, got %d", months)).
		WithContext("horizon_months", months)
}

func NewMissingCalibrationError(component, operation, message string) *SimError {
	return NewSimError(ErrorCategoryMissingCalibration, component, operation, message)
}

func NewInvalidParameterError(component, operation, message string) *SimError {
	return NewSimError(ErrorCategoryInvalidParameter, component, operation, message)
}

func NewCanceledError(component, operation string, err error) *SimError {
	e := WrapError(err, ErrorCategoryCanceled, component, operation)
	e.Message = "simulation canceled"
	return e
}

func NewConfigurationError(component, operation, message string) *SimError {
	return NewSimError(ErrorCategoryConfiguration, component, operation, message)
}

// CategorizeError attempts to categorize a generic collaborator error
func CategorizeError(err error, component, operation string) *SimError {
	if err == nil {
		return nil
	}

	var simErr *SimError
	if stderrors.As(err, &simErr) {
		return simErr
	}

	if stderrors.Is(err, context.Canceled) {
		return NewCanceledError(component, operation, err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial") {
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	if strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "too many requests") {
		return WrapError(err, ErrorCategoryRateLimit, component, operation)
	}

	if strings.Contains(errMsg, "api error") || strings.Contains(errMsg, "retcode") {
		return WrapError(err, ErrorCategoryExchange, component, operation)
	}

	return WrapError(err, ErrorCategoryTemporary, component, operation)
}

// Error recovery strategies
type RecoveryAction string

const (
	RecoveryActionStop     RecoveryAction = "STOP"
	RecoveryActionFallback RecoveryAction = "FALLBACK"
)

// GetRecoveryAction suggests a recovery action based on error category.
// Core errors stop the run; collaborator failures fall back to defaults.
func (e *SimError) GetRecoveryAction() RecoveryAction {
	if e.IsCore() || e.Category == ErrorCategoryConfiguration {
		return RecoveryActionStop
	}
	return RecoveryActionFallback
}

func hasCategory(err error, category ErrorCategory) bool {
	var simErr *SimError
	if stderrors.As(err, &simErr) {
		return simErr.Category == category
	}
	return false
}

// IsInsufficientData reports whether err is an InsufficientDataError
func IsInsufficientData(err error) bool {
	return hasCategory(err, ErrorCategoryInsufficientData)
}

// IsInvalidHorizon reports whether err is an InvalidHorizonError
func IsInvalidHorizon(err error) bool {
	return hasCategory(err, ErrorCategoryInvalidHorizon)
}

// IsMissingCalibration reports whether err is a MissingCalibrationError
func IsMissingCalibration(err error) bool {
	return hasCategory(err, ErrorCategoryMissingCalibration)
}

// IsInvalidParameter reports whether err is an InvalidParameterError
func IsInvalidParameter(err error) bool {
	return hasCategory(err, ErrorCategoryInvalidParameter)
}

// IsCanceled reports whether err reports a canceled simulation
func IsCanceled(err error) bool {
	return hasCategory(err, ErrorCategoryCanceled)
}
