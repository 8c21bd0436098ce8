package bybit

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig holds configuration for retry mechanisms
type RetryConfig struct {
	MaxRetries      int           `json:"maxRetries"`
	InitialDelay    time.Duration `json:"initialDelay"`
	MaxDelay        time.Duration `json:"maxDelay"`
	BackoffFactor   float64       `json:"backoffFactor"`
	JitterEnabled   bool          `json:"jitterEnabled"`
	RetryableErrors []int         `json:"retryableErrors"`
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
		RetryableErrors: []int{
			ErrCodeRateLimitExceeded,
			500, // Internal Server Error
			502, // Bad Gateway
			503, // Service Unavailable
			504, // Gateway Timeout
		},
	}
}

// RetryableFunc represents a function that can be retried
type RetryableFunc func() error

// Retry executes fn with the client's retry configuration
func (c *Client) Retry(ctx context.Context, fn RetryableFunc) error {
	return RetryWithConfig(ctx, fn, c.retry)
}

// RetryWithConfig executes fn until it succeeds, fails with a non-retryable
// error, or the attempts are exhausted. The last error is returned as is.
func RetryWithConfig(ctx context.Context, fn RetryableFunc, config RetryConfig) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == config.MaxRetries || !isRetryableError(err, config.RetryableErrors) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(calculateDelay(attempt, config)):
		}
	}

	return lastErr
}

// isRetryableError checks if an error should be retried based on configuration
func isRetryableError(err error, retryableCodes []int) bool {
	if IsRetryableError(err) {
		return true
	}

	if bybitErr, ok := err.(*BybitError); ok {
		for _, code := range retryableCodes {
			if bybitErr.Code == code {
				return true
			}
		}
	}

	return false
}

// calculateDelay calculates the delay for a retry attempt with exponential backoff
func calculateDelay(attempt int, config RetryConfig) time.Duration {
	delay := config.InitialDelay

	if attempt > 0 {
		delay = time.Duration(float64(config.InitialDelay) * math.Pow(config.BackoffFactor, float64(attempt)))
	}

	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	// +/- 10%
	if config.JitterEnabled {
		jitter := time.Duration(float64(delay) * 0.1 * (2*rand.Float64() - 1))
		delay += jitter
	}

	return delay
}
