package twelvedata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foliotrack/internal/infrastructure/marketdata"
)

func testGate() *marketdata.RateGate {
	return marketdata.NewRateGate(map[string]marketdata.Limit{})
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "twelvedata", NewClient("k", testGate()).Name())
}

func TestClient_FetchPrice_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "AAPL",
			"name": "Apple Inc",
			"exchange": "NASDAQ",
			"currency": "USD",
			"close": "185.92000"
		}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", testGate())
	client.SetBaseURL(server.URL)

	price, err := client.FetchPrice(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "185.92000", price.String())
}

func TestClient_FetchPrice_CreditsSpent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "error",
			"code": 429,
			"message": "You have run out of API credits for the current minute."
		}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", testGate())
	client.SetBaseURL(server.URL)

	_, err := client.FetchPrice(context.Background(), "AAPL")

	var rateErr *marketdata.RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, "twelvedata", rateErr.Provider)
}

func TestClient_FetchPrice_UnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "error",
			"code": 400,
			"message": "symbol not found: NOPE"
		}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", testGate())
	client.SetBaseURL(server.URL)

	_, err := client.FetchPrice(context.Background(), "NOPE")
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestClient_FetchPrice_HTTP429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("test-api-key", testGate())
	client.SetBaseURL(server.URL)

	_, err := client.FetchPrice(context.Background(), "AAPL")

	var rateErr *marketdata.RateLimitError
	assert.ErrorAs(t, err, &rateErr)
}

func TestClient_FetchName_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol": "AAPL", "name": "Apple Inc", "close": "185.92"}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", testGate())
	client.SetBaseURL(server.URL)

	name, err := client.FetchName(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", name)
}

func TestClient_FetchName_MissingName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol": "AAPL", "close": "185.92"}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", testGate())
	client.SetBaseURL(server.URL)

	_, err := client.FetchName(context.Background(), "AAPL")
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}
