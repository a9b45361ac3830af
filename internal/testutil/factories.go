package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	portfolio := testutil.NewPortfolio().
//	    WithName("Income Portfolio").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID     string
	UserID string
	Name   string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:     MakeID(),
		UserID: MakeID(),
		Name:   MakeName("Test Portfolio"),
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// Build creates the portfolio in the database.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.UserID, b.Name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:     b.ID,
		UserID: b.UserID,
		Name:   b.Name,
	}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
type HoldingBuilder struct {
	ID                string
	PortfolioID       string
	Symbol            string
	Shares            float64
	AvgPrice          float64
	PurchaseDate      time.Time
	ReinvestDividends bool
}

// NewHolding creates a HoldingBuilder for the given portfolio with defaults.
func NewHolding(portfolioID string) *HoldingBuilder {
	return &HoldingBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Symbol:      "AAPL",
		Shares:      100,
		AvgPrice:    150,
	}
}

// WithSymbol sets the ticker symbol.
func (b *HoldingBuilder) WithSymbol(symbol string) *HoldingBuilder {
	b.Symbol = symbol
	return b
}

// WithShares sets the share count.
func (b *HoldingBuilder) WithShares(shares float64) *HoldingBuilder {
	b.Shares = shares
	return b
}

// WithAvgPrice sets the cost basis per share.
func (b *HoldingBuilder) WithAvgPrice(price float64) *HoldingBuilder {
	b.AvgPrice = price
	return b
}

// Reinvesting marks the holding as dividend-reinvesting.
func (b *HoldingBuilder) Reinvesting() *HoldingBuilder {
	b.ReinvestDividends = true
	return b
}

// Build creates the holding in the database.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	purchaseDate := any(nil)
	if !b.PurchaseDate.IsZero() {
		purchaseDate = b.PurchaseDate.Format("2006-01-02")
	}

	query := `
		INSERT INTO holding (id, portfolio_id, symbol, shares, avg_price, purchase_date, reinvest_dividends, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.PortfolioID, b.Symbol, b.Shares, b.AvgPrice,
		purchaseDate, b.ReinvestDividends, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		ID:                b.ID,
		PortfolioID:       b.PortfolioID,
		Symbol:            b.Symbol,
		Shares:            b.Shares,
		AvgPrice:          b.AvgPrice,
		PurchaseDate:      b.PurchaseDate,
		ReinvestDividends: b.ReinvestDividends,
	}
}

// DividendEventBuilder provides a fluent interface for creating stored
// dividend events.
type DividendEventBuilder struct {
	ID         string
	Symbol     string
	ExDate     time.Time
	PayDate    time.Time
	RecordDate time.Time
	Amount     float64
	Source     string
}

// NewDividendEvent creates a DividendEventBuilder with defaults.
func NewDividendEvent(symbol string) *DividendEventBuilder {
	return &DividendEventBuilder{
		ID:     MakeID(),
		Symbol: symbol,
		ExDate: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Amount: 0.25,
		Source: "test",
	}
}

// WithExDate sets the ex-dividend date. A zero time stores NULL.
func (b *DividendEventBuilder) WithExDate(d time.Time) *DividendEventBuilder {
	b.ExDate = d
	return b
}

// WithPayDate sets the pay date.
func (b *DividendEventBuilder) WithPayDate(d time.Time) *DividendEventBuilder {
	b.PayDate = d
	return b
}

// WithAmount sets the per-share amount.
func (b *DividendEventBuilder) WithAmount(amount float64) *DividendEventBuilder {
	b.Amount = amount
	return b
}

// WithSource sets the provenance tag.
func (b *DividendEventBuilder) WithSource(source string) *DividendEventBuilder {
	b.Source = source
	return b
}

// Build creates the dividend event in the database.
func (b *DividendEventBuilder) Build(t *testing.T, db *sql.DB) model.DividendEvent {
	t.Helper()

	query := `
		INSERT INTO dividend_event (id, symbol, ex_date, pay_date, record_date, amount, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.Symbol,
		nullableTestDate(b.ExDate), nullableTestDate(b.PayDate), nullableTestDate(b.RecordDate),
		b.Amount, b.Source, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test dividend event: %v", err)
	}

	return model.DividendEvent{
		ID:         b.ID,
		Symbol:     b.Symbol,
		ExDate:     b.ExDate,
		PayDate:    b.PayDate,
		RecordDate: b.RecordDate,
		Amount:     b.Amount,
		Source:     b.Source,
	}
}

func nullableTestDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}
