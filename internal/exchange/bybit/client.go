package bybit

import (
	bybit_api "github.com/bybit-exchange/bybit.go.api"
)

// DefaultCategory is the market category queried for spot prices
const DefaultCategory = "spot"

// Client wraps the Bybit API client for public market data
type Client struct {
	httpClient *bybit_api.Client
	category   string
	testnet    bool
	demo       bool
	retry      RetryConfig
}

// Config holds the configuration for the Bybit client.
// Market data endpoints are public, so the credentials may stay empty.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool   // Demo trading environment
	BaseURL   string // Overrides the environment URL when set
	Category  string // "spot", "linear" or "inverse"
	Retry     *RetryConfig
}

// NewClient creates a new Bybit client
func NewClient(config Config) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		if config.Demo {
			baseURL = "https://api-demo.bybit.com"
		} else if config.Testnet {
			baseURL = bybit_api.TESTNET
		} else {
			baseURL = bybit_api.MAINNET
		}
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	category := config.Category
	if category == "" {
		category = DefaultCategory
	}

	retry := DefaultRetryConfig()
	if config.Retry != nil {
		retry = *config.Retry
	}

	return &Client{
		httpClient: httpClient,
		category:   category,
		testnet:    config.Testnet,
		demo:       config.Demo,
		retry:      retry,
	}
}

// Category returns the market category used for requests
func (c *Client) Category() string {
	return c.category
}

// GetEnvironment returns a string describing the current environment
func (c *Client) GetEnvironment() string {
	if c.demo {
		return "demo"
	} else if c.testnet {
		return "testnet"
	}
	return "mainnet"
}
