package model

// QuarterlyFinancials is one quarter of reported fundamentals for a symbol,
// most recent first when returned in a slice.
type QuarterlyFinancials struct {
	EPS         float64 `json:"eps"`
	EPSEstimate float64 `json:"epsEstimate"`
	Revenue     float64 `json:"revenue"`
	NetIncome   float64 `json:"netIncome"`
}
