package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestUSDQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.RawQuery, "ids=crvusd") {
			t.Errorf("query = %q, want crvusd id", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"crvusd":{"usd":0.999134}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 2, 10*time.Millisecond)
	quote, err := client.USDQuote(context.Background(), "crvUSD")
	if err != nil {
		t.Fatalf("USDQuote() error = %v", err)
	}
	if quote != "0.999134" {
		t.Errorf("quote = %q, want 0.999134", quote)
	}
}

func TestUSDQuoteUnmappedSymbolFallsBackToLowercase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sfrax":{"usd":1.08}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 2, 10*time.Millisecond)
	quote, err := client.USDQuote(context.Background(), "sFRAX")
	if err != nil {
		t.Fatalf("USDQuote() error = %v", err)
	}
	if quote != "1.08" {
		t.Errorf("quote = %q, want 1.08", quote)
	}
}

func TestUSDQuoteRetriesOn429(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"dai":{"usd":1.0}}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 3, time.Millisecond)
	quote, err := client.USDQuote(context.Background(), "DAI")
	if err != nil {
		t.Fatalf("USDQuote() error = %v", err)
	}
	if quote != "1.0" {
		t.Errorf("quote = %q, want 1.0", quote)
	}
	if attempts.Load() != 2 {
		t.Errorf("attempts = %d, want 2", attempts.Load())
	}
}

func TestUSDQuoteMissingCoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(server.URL, 1, time.Millisecond)
	if _, err := client.USDQuote(context.Background(), "crvUSD"); err == nil {
		t.Fatal("USDQuote() succeeded with empty response, want error")
	}
}
