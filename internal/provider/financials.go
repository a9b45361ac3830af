package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

const polygonFinancialsURL = "https://api.polygon.io/v2/reference/financials"

// PolygonFinancialsClient fetches quarterly reported fundamentals used by the
// earnings risk analysis.
type PolygonFinancialsClient struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

type polygonFinancialsResponse struct {
	Results []struct {
		EPS         any `json:"earnings_per_share"`
		EPSEstimate any `json:"earnings_per_share_estimate"`
		Revenue     any `json:"revenue"`
		NetIncome   any `json:"net_income"`
	} `json:"results"`
}

// NewPolygonFinancialsClient creates a fundamentals source sharing the
// Polygon rate limiter with the dividend and price clients.
func NewPolygonFinancialsClient(apiKey string, limiter *rate.Limiter) *PolygonFinancialsClient {
	return &PolygonFinancialsClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		limiter:    limiter,
		baseURL:    polygonFinancialsURL,
	}
}

// FetchQuarterlyFinancials returns up to the last eight reported quarters,
// most recent first. Without an API key the source contributes nothing.
func (c *PolygonFinancialsClient) FetchQuarterlyFinancials(ctx context.Context, symbol string) ([]model.QuarterlyFinancials, error) {
	if c.apiKey == "" {
		return []model.QuarterlyFinancials{}, nil
	}

	sym := normalizeSymbol(symbol)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("ticker", sym)
	params.Set("limit", strconv.Itoa(8))
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
		return nil, fmt.Errorf("polygon financials: unexpected status %d for %s", resp.StatusCode, sym)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload polygonFinancialsResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("polygon financials: failed to parse response: %w", err)
	}

	quarters := make([]model.QuarterlyFinancials, 0, len(payload.Results))
	for _, r := range payload.Results {
		quarters = append(quarters, model.QuarterlyFinancials{
			EPS:         coerceNumber(r.EPS),
			EPSEstimate: coerceNumber(r.EPSEstimate),
			Revenue:     coerceNumber(r.Revenue),
			NetIncome:   coerceNumber(r.NetIncome),
		})
	}

	return quarters, nil
}
