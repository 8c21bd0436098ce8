package bybit

import (
	"errors"
	"fmt"
	"net/http"

	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
)

// BybitError represents a Bybit API error with additional context
type BybitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *BybitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Bybit API error %d: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("Bybit API error %d: %s", e.Code, e.Message)
}

// Bybit error codes relevant to public market data
const (
	ErrCodeInvalidAPIKey     = 10003
	ErrCodeInvalidSignature  = 10004
	ErrCodeInvalidTimestamp  = 10005
	ErrCodeRateLimitExceeded = 10006
	ErrCodeInvalidParameter  = 10001
	ErrCodeSymbolNotFound    = 110009
)

// IsRetryableError determines if an error should be retried
func IsRetryableError(err error) bool {
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		switch bybitErr.Code {
		case ErrCodeRateLimitExceeded,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

// IsRateLimitError checks if the error is due to rate limiting
func IsRateLimitError(err error) bool {
	var bybitErr *BybitError
	return errors.As(err, &bybitErr) && bybitErr.Code == ErrCodeRateLimitExceeded
}

// NewBybitError creates a new BybitError
func NewBybitError(code int, message string, details ...string) *BybitError {
	err := &BybitError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// ParseAPIError extracts error information from the API response
func ParseAPIError(retCode int, retMsg string) error {
	if retCode == 0 {
		return nil
	}
	return NewBybitError(retCode, retMsg)
}

// WrapAPIError converts an exchange failure into a categorized SimError
func WrapAPIError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if IsRateLimitError(err) {
		return simerrors.WrapError(err, simerrors.ErrorCategoryRateLimit, "bybit", operation)
	}
	return simerrors.CategorizeError(err, "bybit", operation)
}
