package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided
// database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// ListOpenByPortfolio retrieves all holdings with shares > 0 for a portfolio.
// Closed positions (shares == 0) are excluded from calendar and forecast
// joins. Returns an empty slice when the portfolio holds nothing.
func (r *HoldingRepository) ListOpenByPortfolio(ctx context.Context, portfolioID string) ([]model.Holding, error) {
	query := `
		SELECT id, portfolio_id, symbol, shares, avg_price, purchase_date, reinvest_dividends, created_at
		FROM holding
		WHERE portfolio_id = ? AND shares > 0
		ORDER BY symbol ASC
	`

	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	return scanHoldings(rows)
}

// ListOwnedSymbols retrieves the distinct uppercased symbols across all open
// holdings. This is the refresh orchestrator's work list.
func (r *HoldingRepository) ListOwnedSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT UPPER(symbol)
		FROM holding
		WHERE shares > 0
		ORDER BY UPPER(symbol) ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	symbols := []string{}

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan holding symbols: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return symbols, nil
}

// InsertHolding inserts a new holding row and returns its generated ID.
func (r *HoldingRepository) InsertHolding(ctx context.Context, holding model.Holding) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO holding (id, portfolio_id, symbol, shares, avg_price, purchase_date, reinvest_dividends, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		holding.PortfolioID,
		strings.ToUpper(holding.Symbol),
		holding.Shares,
		holding.AvgPrice,
		nullableDate(holding.PurchaseDate),
		holding.ReinvestDividends,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert into holding table: %w", err)
	}

	return id, nil
}

// scanHoldings maps holding rows onto model.Holding values.
func scanHoldings(rows *sql.Rows) ([]model.Holding, error) {
	holdings := []model.Holding{}

	for rows.Next() {
		var h model.Holding
		var purchaseDate, createdAt sql.NullString

		err := rows.Scan(
			&h.ID,
			&h.PortfolioID,
			&h.Symbol,
			&h.Shares,
			&h.AvgPrice,
			&purchaseDate,
			&h.ReinvestDividends,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		h.Symbol = strings.ToUpper(h.Symbol)

		if purchaseDate.Valid {
			if h.PurchaseDate, err = ParseTime(purchaseDate.String); err != nil {
				return nil, fmt.Errorf("failed to parse purchase_date: %w", err)
			}
		}
		if createdAt.Valid {
			if h.CreatedAt, err = ParseTime(createdAt.String); err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
		}

		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}
