package model

// ForecastMonth is one calendar-month bucket in a projection series.
type ForecastMonth struct {
	Month       string  `json:"month"` // formatted "2006-01"
	Income      float64 `json:"income"`
	Cumulative  float64 `json:"cumulative"`
	HasDividend bool    `json:"hasDividend"`
}

// ForecastAssumptions echoes the inputs the projection was run with.
type ForecastAssumptions struct {
	Reinvest         bool    `json:"reinvest"`
	GrowthScenario   string  `json:"growthScenario"`
	RecurringDeposit float64 `json:"recurringDeposit"`
}

// PatternSummary is the per-symbol pattern detail included in a forecast
// response. GrowthRate is expressed in percent for display.
type PatternSummary struct {
	Frequency     int     `json:"frequency"`
	PaymentMonths []int   `json:"paymentMonths"`
	GrowthRate    float64 `json:"growthRate"`
}

// ForecastResult is the output of a monthly cashflow projection.
//
// Scenarios holds the projected total under every growth scenario. Totals for
// non-selected scenarios are approximated by scaling the realized total by the
// scenario's growth differential rather than re-running the simulation; they
// are comparative indicators, not precise projections.
type ForecastResult struct {
	Series      []ForecastMonth           `json:"series"`
	Total       float64                   `json:"total"`
	Scenarios   map[string]float64        `json:"scenarios"`
	Patterns    map[string]PatternSummary `json:"patterns"`
	Assumptions ForecastAssumptions       `json:"assumptions"`
}
