package bybit

import (
	"context"
	"errors"
	"testing"
	"time"

	simerrors "github.com/ducminhle1904/dca-montecarlo/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseKlineList tests ordering, skipping and field mapping
func TestParseKlineList(t *testing.T) {
	data := []byte(`{
		"symbol": "BTCUSDT",
		"category": "spot",
		"list": [
			["1719792000000", "62000", "70000", "53000", "64600", "1000", "64000000"],
			["1717200000000", "67500", "71900", "58400", "62700", "1100", "70000000"],
			["1714521600000", "60600", "72000", "56500", "0", "900", "60000000"],
			["1711929600000", "71300"]
		]
	}`)

	klines, err := parseKlineList(data)
	require.NoError(t, err)
	require.Len(t, klines, 2)

	assert.True(t, klines[0].StartTime.Before(klines[1].StartTime))
	assert.Equal(t, 62700.0, klines[0].ClosePrice)
	assert.Equal(t, 64600.0, klines[1].ClosePrice)
	assert.Equal(t, 70000.0, klines[1].HighPrice)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), klines[1].StartTime)
}

// TestParseKlineList_InvalidJSON tests decoding failures
func TestParseKlineList_InvalidJSON(t *testing.T) {
	_, err := parseKlineList([]byte(`{"list": "nope"}`))
	assert.Error(t, err)
}

// TestParseLastPrice tests ticker extraction by symbol
func TestParseLastPrice(t *testing.T) {
	data := []byte(`{
		"category": "spot",
		"list": [
			{"symbol": "ETHUSDT", "lastPrice": "3500.5"},
			{"symbol": "BTCUSDT", "lastPrice": "107123.45"}
		]
	}`)

	price, err := parseLastPrice(data, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 107123.45, price)

	_, err = parseLastPrice(data, "SOLUSDT")
	assert.Error(t, err)

	_, err = parseLastPrice([]byte(`{"list": [{"symbol": "BTCUSDT", "lastPrice": ""}]}`), "BTCUSDT")
	assert.Error(t, err)
}

// TestDecodeResult_InvalidType tests rejection of unexpected response values
func TestDecodeResult_InvalidType(t *testing.T) {
	_, err := decodeResult("not a response")
	assert.Error(t, err)

	_, err = decodeResult(nil)
	assert.Error(t, err)
}

// TestRetryWithConfig_RetriesRetryableErrors tests that rate limits are retried
func TestRetryWithConfig_RetriesRetryableErrors(t *testing.T) {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond
	config.MaxDelay = 2 * time.Millisecond

	attempts := 0
	err := RetryWithConfig(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return NewBybitError(ErrCodeRateLimitExceeded, "too many visits")
		}
		return nil
	}, config)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

// TestRetryWithConfig_StopsOnPermanentError tests that other errors are returned immediately
func TestRetryWithConfig_StopsOnPermanentError(t *testing.T) {
	config := DefaultRetryConfig()
	config.InitialDelay = time.Millisecond

	attempts := 0
	err := RetryWithConfig(context.Background(), func() error {
		attempts++
		return NewBybitError(ErrCodeSymbolNotFound, "symbol invalid")
	}, config)

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var bybitErr *BybitError
	require.True(t, errors.As(err, &bybitErr))
	assert.Equal(t, ErrCodeSymbolNotFound, bybitErr.Code)
}

// TestRetryWithConfig_Canceled tests that a canceled context stops retrying
func TestRetryWithConfig_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RetryWithConfig(ctx, func() error {
		called = true
		return nil
	}, DefaultRetryConfig())

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// TestCalculateDelay tests exponential growth and the cap
func TestCalculateDelay(t *testing.T) {
	config := RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, 100*time.Millisecond, calculateDelay(0, config))
	assert.Equal(t, 400*time.Millisecond, calculateDelay(2, config))
	assert.Equal(t, time.Second, calculateDelay(10, config))

	config.JitterEnabled = true
	d := calculateDelay(1, config)
	assert.GreaterOrEqual(t, d, 180*time.Millisecond)
	assert.LessOrEqual(t, d, 220*time.Millisecond)
}

// TestWrapAPIError tests categorization of exchange failures
func TestWrapAPIError(t *testing.T) {
	assert.Nil(t, WrapAPIError("GetKlines", nil))

	err := WrapAPIError("GetKlines", NewBybitError(ErrCodeRateLimitExceeded, "too many visits"))
	var simErr *simerrors.SimError
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, simerrors.ErrorCategoryRateLimit, simErr.Category)
	assert.Equal(t, simerrors.RecoveryActionFallback, simErr.GetRecoveryAction())

	err = WrapAPIError("GetKlines", NewBybitError(ErrCodeSymbolNotFound, "symbol invalid"))
	require.True(t, errors.As(err, &simErr))
	assert.Equal(t, simerrors.ErrorCategoryExchange, simErr.Category)

	err = WrapAPIError("GetKlines", context.Canceled)
	assert.True(t, simerrors.IsCanceled(err))
}

// TestNewClient tests environment selection and defaults
func TestNewClient(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, "mainnet", c.GetEnvironment())
	assert.Equal(t, DefaultCategory, c.Category())

	c = NewClient(Config{Testnet: true, Category: "linear"})
	assert.Equal(t, "testnet", c.GetEnvironment())
	assert.Equal(t, "linear", c.Category())

	assert.Equal(t, "demo", NewClient(Config{Demo: true}).GetEnvironment())
}
