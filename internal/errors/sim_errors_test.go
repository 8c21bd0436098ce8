package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSimError_Predicates tests category predicates through wrapping
func TestSimError_Predicates(t *testing.T) {
	err := fmt.Errorf("calibrate: %w", NewInsufficientDataError("calibration", "Estimate", 1))

	assert.True(t, IsInsufficientData(err))
	assert.False(t, IsInvalidHorizon(err))
	assert.False(t, IsMissingCalibration(err))
	assert.False(t, IsInvalidParameter(err))
	assert.False(t, IsCanceled(err))

	assert.True(t, IsInvalidHorizon(NewInvalidHorizonError("montecarlo", "SimulatePath", 0)))
	assert.True(t, IsMissingCalibration(NewMissingCalibrationError("montecarlo", "Aggregate", "no params")))
	assert.True(t, IsInvalidParameter(NewInvalidParameterError("montecarlo", "Aggregate", "bad amount")))
	assert.False(t, IsInvalidParameter(stderrors.New("plain")))
}

// TestSimError_ErrorMessage tests the formatted message
func TestSimError_ErrorMessage(t *testing.T) {
	err := NewInvalidHorizonError("montecarlo", "SimulatePath", 0)
	assert.Equal(t, "[INVALID_HORIZON:montecarlo] SimulatePath: horizon must be at least 1 month, got 0", err.Error())
	assert.Equal(t, 0, err.Context["horizon_months"])

	wrapped := WrapError(stderrors.New("boom"), ErrorCategoryNetwork, "bybit", "GetLatestPrice")
	assert.Contains(t, wrapped.Error(), "boom")
	assert.Nil(t, WrapError(nil, ErrorCategoryNetwork, "bybit", "GetLatestPrice"))
}

// TestCanceledError_UnwrapsContextError tests that cancellation keeps the context cause
func TestCanceledError_UnwrapsContextError(t *testing.T) {
	err := NewCanceledError("montecarlo", "Aggregate", context.Canceled)

	assert.True(t, IsCanceled(err))
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, RecoveryActionStop, err.GetRecoveryAction())
}

// TestCategorizeError tests categorization of collaborator errors
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCategory
	}{
		{"timeout", stderrors.New("request timeout"), ErrorCategoryTimeout},
		{"deadline", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled", context.Canceled, ErrorCategoryCanceled},
		{"dial", stderrors.New("dial tcp: no route"), ErrorCategoryNetwork},
		{"rate limit", stderrors.New("Too Many Requests"), ErrorCategoryRateLimit},
		{"api", stderrors.New("API error: bad symbol (code: 10001)"), ErrorCategoryExchange},
		{"unknown", stderrors.New("something odd"), ErrorCategoryTemporary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categorized := CategorizeError(tt.err, "quote", "Fetch")
			require.NotNil(t, categorized)
			assert.Equal(t, tt.expected, categorized.Category)
		})
	}

	assert.Nil(t, CategorizeError(nil, "quote", "Fetch"))

	original := NewInvalidParameterError("config", "Validate", "bad")
	assert.Same(t, original, CategorizeError(fmt.Errorf("wrap: %w", original), "quote", "Fetch"))
}

// TestGetRecoveryAction tests recovery suggestions
func TestGetRecoveryAction(t *testing.T) {
	assert.Equal(t, RecoveryActionStop, NewInvalidParameterError("c", "o", "m").GetRecoveryAction())
	assert.Equal(t, RecoveryActionStop, NewConfigurationError("c", "o", "m").GetRecoveryAction())
	assert.Equal(t, RecoveryActionFallback, WrapError(stderrors.New("x"), ErrorCategoryNetwork, "c", "o").GetRecoveryAction())
}
