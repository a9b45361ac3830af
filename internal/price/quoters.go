package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"
)

// PolygonQuoter fetches the previous close from the Polygon aggregates API.
type PolygonQuoter struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewPolygonQuoter creates a Polygon previous-close quote source.
func NewPolygonQuoter(apiKey string, limiter *rate.Limiter) *PolygonQuoter {
	return &PolygonQuoter{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		limiter:    limiter,
		baseURL:    "https://api.polygon.io/v2/aggs/ticker",
	}
}

// Name identifies the source in resolver logs.
func (q *PolygonQuoter) Name() string {
	return "polygon"
}

// LatestPrice returns the previous trading day's close for a symbol, or zero
// when Polygon has no data (no API key configured, unknown symbol).
func (q *PolygonQuoter) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if q.apiKey == "" {
		return 0, nil
	}

	sym := cleanSymbol(symbol)

	if err := q.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("apiKey", q.apiKey)

	reqURL := fmt.Sprintf("%s/%s/prev?%s", q.baseURL, sym, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("polygon prev-close: unexpected status %d for %s", resp.StatusCode, sym)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var payload struct {
		Results []struct {
			Close float64 `json:"c"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("polygon prev-close: failed to parse response: %w", err)
	}

	if len(payload.Results) == 0 {
		return 0, nil
	}
	return payload.Results[0].Close, nil
}

// YahooQuoter fetches the most recent daily close from the Yahoo Finance
// chart API, used as the fallback when Polygon has no answer.
type YahooQuoter struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewYahooQuoter creates a Yahoo Finance quote source.
func NewYahooQuoter(limiter *rate.Limiter) *YahooQuoter {
	return &YahooQuoter{
		httpClient: &http.Client{},
		limiter:    limiter,
		baseURL:    "https://query1.finance.yahoo.com/v8/finance/chart",
	}
}

// Name identifies the source in resolver logs.
func (q *YahooQuoter) Name() string {
	return "yahoo"
}

// LatestPrice returns the last non-null daily close from the past five
// trading days, or zero when none is available.
func (q *YahooQuoter) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	sym := cleanSymbol(symbol)

	if err := q.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	reqURL := fmt.Sprintf("%s/%s?interval=1d&range=5d", q.baseURL, sym)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Indicators struct {
					Quote []struct {
						Close []*float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *string `json:"error"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("yahoo close: failed to parse response: %w", err)
	}

	if payload.Chart.Error != nil {
		return 0, fmt.Errorf("yahoo error: %s", *payload.Chart.Error)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return 0, nil
	}

	closes := payload.Chart.Result[0].Indicators.Quote[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] != nil && *closes[i] > 0 {
			return *closes[i], nil
		}
	}

	return 0, nil
}

// cleanSymbol uppercases a ticker and strips whitespace and "$" prefixes.
func cleanSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(symbol, "$", "")))
}
