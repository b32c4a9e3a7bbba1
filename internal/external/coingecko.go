package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SymbolMapping maps reference-asset symbols to CoinGecko IDs.
var SymbolMapping = map[string]string{
	"crvUSD": "crvusd",
	"USDC":   "usd-coin",
	"USDT":   "tether",
	"DAI":    "dai",
	"WETH":   "weth",
}

// CoinGeckoClient fetches USD quotes from the CoinGecko API.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewCoinGeckoClient creates a new CoinGecko API client.
func NewCoinGeckoClient(baseURL string, maxRetries int, baseDelay time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// USDQuote resolves the USD price for a reference-asset symbol, returned as
// a decimal string. Unmapped symbols are an error; the caller treats quote
// failures as a report annotation gap, not a fatal condition.
func (c *CoinGeckoClient) USDQuote(ctx context.Context, symbol string) (string, error) {
	coinID, ok := SymbolMapping[symbol]
	if !ok {
		// Symbols usually match their CoinGecko ID lowercased.
		coinID = strings.ToLower(symbol)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&precision=6", c.baseURL, coinID)

	body, err := c.fetchWithRetry(ctx, url)
	if err != nil {
		return "", err
	}

	// Parse: {"crvusd":{"usd":0.999134}}
	var raw map[string]map[string]json.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("parsing CoinGecko response: %w", err)
	}

	prices, ok := raw[coinID]
	if !ok {
		return "", fmt.Errorf("CoinGecko has no quote for %s (%s)", symbol, coinID)
	}
	quote, ok := prices["usd"]
	if !ok {
		return "", fmt.Errorf("CoinGecko quote for %s has no usd field", coinID)
	}

	return quote.String(), nil
}

func (c *CoinGeckoClient) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.baseDelay
			if baseDelay == 0 {
				baseDelay = 10 * time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating CoinGecko request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("CoinGecko request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading CoinGecko response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("CoinGecko rate limited (attempt %d/%d)", attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("CoinGecko HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
