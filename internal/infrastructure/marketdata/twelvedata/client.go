package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foliotrack/internal/domain"
	"foliotrack/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://api.twelvedata.com"
	quotePath      = "/quote"

	providerName = "twelvedata"
)

// Client implements the marketdata.Provider interface using the Twelve
// Data API.
type Client struct {
	baseURL    string
	apiKey     string
	gate       *marketdata.RateGate
	httpClient *http.Client
}

func NewClient(apiKey string, gate *marketdata.RateGate) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		gate:    gate,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *Client) Name() string {
	return providerName
}

// quoteResponse represents the Twelve Data quote response. Errors come
// back with HTTP 200 and status "error"; code 429 or an "API credits"
// message means the per-minute credit budget is spent.
type quoteResponse struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
	Datetime string `json:"datetime"`
	Close    string `json:"close"`
	Status   string `json:"status"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
}

// FetchPrice retrieves the current price for a symbol.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (domain.Decimal, error) {
	quoteResp, err := c.quote(ctx, symbol)
	if err != nil {
		return domain.Zero, err
	}

	if quoteResp.Close == "" {
		return domain.Zero, marketdata.ErrNoData
	}
	price, err := domain.NewDecimalFromString(quoteResp.Close)
	if err != nil {
		return domain.Zero, fmt.Errorf("failed to parse price: %w", err)
	}
	return price, nil
}

// FetchName retrieves the instrument name carried on the quote response.
func (c *Client) FetchName(ctx context.Context, symbol string) (string, error) {
	quoteResp, err := c.quote(ctx, symbol)
	if err != nil {
		return "", err
	}

	if quoteResp.Name == "" {
		return "", marketdata.ErrNoData
	}
	return quoteResp.Name, nil
}

func (c *Client) quote(ctx context.Context, symbol string) (*quoteResponse, error) {
	if err := c.gate.Acquire(ctx, providerName); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, quotePath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &marketdata.RateLimitError{Provider: providerName, Reason: "HTTP 429"}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var quoteResp quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if quoteResp.Status == "error" {
		if quoteResp.Code == http.StatusTooManyRequests || strings.Contains(quoteResp.Message, "API credits") {
			return nil, &marketdata.RateLimitError{Provider: providerName, Reason: quoteResp.Message}
		}
		// Any other in-band error (unknown symbol, plan restrictions) is
		// a well-formed empty answer for fallback purposes.
		return nil, marketdata.ErrNoData
	}
	return &quoteResp, nil
}
