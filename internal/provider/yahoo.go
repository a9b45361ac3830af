package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// YahooClient fetches historical dividends from the Yahoo Finance chart API
// using the events=div query. Yahoo reports ex-dates and amounts only; pay
// and record dates are always absent from this feed.
type YahooClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// yahooChartResponse mirrors the subset of the Yahoo chart payload this
// source consumes. Dividend events arrive keyed by their Unix ex-date
// timestamp. Amounts are decoded loosely so a malformed value coerces
// to zero.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Events struct {
				Dividends map[string]struct {
					Amount any   `json:"amount"`
					Date   int64 `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *string `json:"error"`
	} `json:"chart"`
}

// NewYahooClient creates a Yahoo Finance dividend source.
func NewYahooClient(limiter *rate.Limiter) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{},
		limiter:    limiter,
		baseURL:    "https://query1.finance.yahoo.com/v8/finance/chart",
	}
}

// Name returns the provenance tag recorded on events from this source.
func (c *YahooClient) Name() string {
	return "yahoo"
}

// FetchDividends retrieves up to ten years of dividend history for a symbol.
func (c *YahooClient) FetchDividends(ctx context.Context, symbol string) ([]model.DividendEvent, error) {
	sym := normalizeSymbol(symbol)

	url := fmt.Sprintf("%s/%s?interval=1d&range=10y&events=div", c.baseURL, sym)

	payload, err := c.queryYahoo(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(payload.Chart.Result) == 0 {
		return []model.DividendEvent{}, nil
	}

	dividends := payload.Chart.Result[0].Events.Dividends
	events := make([]model.DividendEvent, 0, len(dividends))

	for _, d := range dividends {
		event := model.DividendEvent{
			Symbol: sym,
			Amount: coerceAmount(d.Amount),
			Source: c.Name(),
		}
		if d.Date > 0 {
			event.ExDate = time.Unix(d.Date, 0).UTC().Truncate(24 * time.Hour)
		}
		events = append(events, event)
	}

	return events, nil
}

// queryYahoo executes an HTTP request against the Yahoo Finance API. The
// User-Agent header mimics a browser to avoid API blocking.
func (c *YahooClient) queryYahoo(ctx context.Context, url string) (yahooChartResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return yahooChartResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return yahooChartResponse{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return yahooChartResponse{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return yahooChartResponse{}, err
	}

	var response yahooChartResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return yahooChartResponse{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s", *response.Chart.Error)
	}

	return response, nil
}
