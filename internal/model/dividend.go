package model

import "time"

// DividendEvent represents a single declared dividend for a symbol.
// A zero ExDate, PayDate or RecordDate means the field is not yet known;
// providers frequently omit pay and record dates.
//
// Events are uniquely identified by (Symbol, ExDate, Amount). Two events with
// the same symbol and ex-date but different amounts are distinct events
// (corrections arrive as new records), not duplicates.
type DividendEvent struct {
	ID         string    `json:"id,omitempty"`
	Symbol     string    `json:"symbol"`
	ExDate     time.Time `json:"exDate,omitzero"`
	PayDate    time.Time `json:"payDate,omitzero"`
	RecordDate time.Time `json:"recordDate,omitzero"`
	Amount     float64   `json:"amount"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// HasUsableDate reports whether the event carries at least one of ex-date or
// pay-date. Events lacking both cannot be placed on a calendar or analyzed
// for cadence and must be skipped by those consumers.
func (e DividendEvent) HasUsableDate() bool {
	return !e.ExDate.IsZero() || !e.PayDate.IsZero()
}

// IncomeCalendarEntry is a derived join of one holding with one applicable
// dividend event. Entries are recomputed on every calendar request and never
// stored.
type IncomeCalendarEntry struct {
	PortfolioID string    `json:"portfolioID"`
	Symbol      string    `json:"symbol"`
	ExDate      time.Time `json:"exDate,omitzero"`
	PayDate     time.Time `json:"payDate,omitzero"`
	Amount      float64   `json:"amount"` // per share
	Shares      float64   `json:"shares"`
	Cash        float64   `json:"cash"` // Amount * Shares
	Status      string    `json:"status"`
}

// Calendar entry status values.
const (
	StatusPaid     = "paid"
	StatusUpcoming = "upcoming"
)

// DividendPattern is a derived summary of a symbol's historical payment
// cadence. It is recomputed per request from the persisted event history.
type DividendPattern struct {
	Symbol          string  `json:"symbol"`
	PaymentMonths   []int   `json:"paymentMonths"` // distinct calendar months, ascending
	Frequency       int     `json:"frequency"`     // count of distinct payment months
	IsMonthly       bool    `json:"isMonthly"`     // >= 10 distinct months
	IsQuarterly     bool    `json:"isQuarterly"`   // exactly 4 distinct months
	GrowthRate      float64 `json:"growthRate"`    // bounded [0, 0.15]
	RecentAvgAmount float64 `json:"recentAvgAmount"`
	TotalEvents     int     `json:"totalEvents"`
}

// Classification returns the cadence label for the pattern.
func (p DividendPattern) Classification() string {
	switch {
	case p.IsMonthly:
		return "monthly"
	case p.IsQuarterly:
		return "quarterly"
	default:
		return "irregular"
	}
}
