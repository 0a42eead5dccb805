package alphavantage

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
	defaultBaseURL = "https://www.alphavantage.co"
	queryPath      = "/query"

	providerName = "alphavantage"
)

// Client implements the marketdata.Provider interface using the Alpha
// Vantage API. The free tier is heavily budgeted (25 calls per day, one
// call every 12 seconds), which the shared RateGate enforces; on top of
// that the API reports throttling in-band through "Note"/"Information"
// fields on an otherwise successful response.
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

// globalQuoteResponse represents the GLOBAL_QUOTE response. The throttling
// fields appear instead of the quote when the API is rate limiting.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// overviewResponse represents the OVERVIEW response, used for name lookups.
type overviewResponse struct {
	Symbol      string `json:"Symbol"`
	Name        string `json:"Name"`
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// FetchPrice retrieves the current price via the GLOBAL_QUOTE function.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (domain.Decimal, error) {
	if err := c.gate.Acquire(ctx, providerName); err != nil {
		return domain.Zero, err
	}

	params := url.Values{}
	params.Add("function", "GLOBAL_QUOTE")
	params.Add("symbol", symbol)
	params.Add("apikey", c.apiKey)

	var quoteResp globalQuoteResponse
	if err := c.getJSON(ctx, params, &quoteResp); err != nil {
		return domain.Zero, err
	}

	if reason := throttleReason(quoteResp.Note, quoteResp.Information); reason != "" {
		return domain.Zero, &marketdata.RateLimitError{Provider: providerName, Reason: reason}
	}
	if quoteResp.GlobalQuote.Price == "" {
		return domain.Zero, marketdata.ErrNoData
	}

	price, err := domain.NewDecimalFromString(quoteResp.GlobalQuote.Price)
	if err != nil {
		return domain.Zero, fmt.Errorf("failed to parse price: %w", err)
	}
	return price, nil
}

// FetchName retrieves the company name via the OVERVIEW function.
func (c *Client) FetchName(ctx context.Context, symbol string) (string, error) {
	if err := c.gate.Acquire(ctx, providerName); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Add("function", "OVERVIEW")
	params.Add("symbol", symbol)
	params.Add("apikey", c.apiKey)

	var overviewResp overviewResponse
	if err := c.getJSON(ctx, params, &overviewResp); err != nil {
		return "", err
	}

	if reason := throttleReason(overviewResp.Note, overviewResp.Information); reason != "" {
		return "", &marketdata.RateLimitError{Provider: providerName, Reason: reason}
	}
	if overviewResp.Name == "" {
		return "", marketdata.ErrNoData
	}
	return overviewResp.Name, nil
}

// throttleReason returns the API's throttling message, if any. Alpha
// Vantage answers HTTP 200 with a "Note" (per-minute limit) or
// "Information" (daily limit) field instead of data when throttled.
func throttleReason(note, information string) string {
	if note != "" {
		return note
	}
	return information
}

func (c *Client) getJSON(ctx context.Context, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, queryPath, params.Encode())

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
