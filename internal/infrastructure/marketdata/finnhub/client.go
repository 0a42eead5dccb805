package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"foliotrack/internal/domain"
	"foliotrack/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://finnhub.io/api/v1"
	quotePath      = "/quote"
	profilePath    = "/stock/profile2"

	providerName = "finnhub"
)

// Client implements the marketdata.Provider interface using the Finnhub API.
type Client struct {
	baseURL    string
	apiKey     string
	gate       *marketdata.RateGate
	httpClient *http.Client
}

// NewClient creates a new Finnhub API client.
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

// NewClientWithHTTPClient creates a new Finnhub client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(apiKey string, gate *marketdata.RateGate, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		gate:       gate,
		httpClient: httpClient,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *Client) Name() string {
	return providerName
}

// quoteResponse represents the Finnhub quote response.
type quoteResponse struct {
	Current       float64 `json:"c"`  // Current price
	High          float64 `json:"h"`  // High price of the day
	Low           float64 `json:"l"`  // Low price of the day
	Open          float64 `json:"o"`  // Open price of the day
	PreviousClose float64 `json:"pc"` // Previous close price
	Timestamp     int64   `json:"t"`  // Timestamp
}

// profileResponse represents the Finnhub company profile response.
type profileResponse struct {
	Currency string `json:"currency"`
	Exchange string `json:"exchange"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
}

// FetchPrice retrieves the current price for a symbol. Finnhub returns an
// all-zero quote body for unknown symbols, which maps to ErrNoData, and
// signals throttling with HTTP 429.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (domain.Decimal, error) {
	if err := c.gate.Acquire(ctx, providerName); err != nil {
		return domain.Zero, err
	}

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("token", c.apiKey)

	var quoteResp quoteResponse
	if err := c.getJSON(ctx, quotePath, params, &quoteResp); err != nil {
		return domain.Zero, err
	}

	// Finnhub returns zeros for every field when the symbol is unknown,
	// and a non-positive current price is never usable.
	if quoteResp.Current <= 0 {
		return domain.Zero, marketdata.ErrNoData
	}

	price, err := domain.NewDecimalFromString(fmt.Sprintf("%.4f", quoteResp.Current))
	if err != nil {
		return domain.Zero, fmt.Errorf("failed to parse price: %w", err)
	}
	return price, nil
}

// FetchName retrieves the company name from the profile endpoint. An empty
// profile means Finnhub has no data for the symbol.
func (c *Client) FetchName(ctx context.Context, symbol string) (string, error) {
	if err := c.gate.Acquire(ctx, providerName); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("token", c.apiKey)

	var profileResp profileResponse
	if err := c.getJSON(ctx, profilePath, params, &profileResp); err != nil {
		return "", err
	}

	if profileResp.Name == "" {
		return "", marketdata.ErrNoData
	}
	return profileResp.Name, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &marketdata.RateLimitError{Provider: providerName, Reason: "HTTP 429"}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
