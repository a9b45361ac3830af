package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

const polygonDividendsURL = "https://api.polygon.io/v3/reference/dividends"

// PolygonClient fetches declared dividends from the Polygon reference API.
// Polygon is the richest source for pay and record dates, which the other
// feeds usually omit.
type PolygonClient struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// polygonDividendsResponse mirrors the wire shape of the Polygon dividends
// endpoint. CashAmount is decoded loosely so a malformed value coerces to
// zero instead of failing the whole payload.
type polygonDividendsResponse struct {
	Results []struct {
		ExDividendDate string `json:"ex_dividend_date"`
		PayDate        string `json:"pay_date"`
		RecordDate     string `json:"record_date"`
		CashAmount     any    `json:"cash_amount"`
	} `json:"results"`
	Status string `json:"status"`
}

// NewPolygonClient creates a Polygon dividend source. The limiter is shared
// across providers to respect free-plan call budgets.
func NewPolygonClient(apiKey string, limiter *rate.Limiter) *PolygonClient {
	return &PolygonClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		limiter:    limiter,
		baseURL:    polygonDividendsURL,
	}
}

// Name returns the provenance tag recorded on events from this source.
func (c *PolygonClient) Name() string {
	return "polygon"
}

// FetchDividends retrieves and normalizes declared dividends for a symbol.
// Without an API key the source contributes nothing rather than erroring.
func (c *PolygonClient) FetchDividends(ctx context.Context, symbol string) ([]model.DividendEvent, error) {
	if c.apiKey == "" {
		return []model.DividendEvent{}, nil
	}

	sym := normalizeSymbol(symbol)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("ticker", sym)
	params.Set("limit", "100")
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("polygon dividends: unexpected status %d for %s", resp.StatusCode, sym)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload polygonDividendsResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("polygon dividends: failed to parse response: %w", err)
	}

	return c.normalize(sym, payload), nil
}

// normalize converts the Polygon payload into canonical events. Individual
// malformed records degrade field by field instead of dropping siblings.
func (c *PolygonClient) normalize(symbol string, payload polygonDividendsResponse) []model.DividendEvent {
	events := make([]model.DividendEvent, 0, len(payload.Results))

	for _, r := range payload.Results {
		events = append(events, model.DividendEvent{
			Symbol:     symbol,
			ExDate:     parseDate(r.ExDividendDate),
			PayDate:    parseDate(r.PayDate),
			RecordDate: parseDate(r.RecordDate),
			Amount:     coerceAmount(r.CashAmount),
			Source:     c.Name(),
		})
	}

	return events
}
