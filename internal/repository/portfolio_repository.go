package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dividendlab/cashflow-backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided
// database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// Exists reports whether a portfolio with the given ID exists.
func (r *PortfolioRepository) Exists(ctx context.Context, portfolioID string) (bool, error) {
	var count int

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM portfolio WHERE id = ?`, portfolioID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query portfolio table: %w", err)
	}

	return count > 0, nil
}

// InsertPortfolio inserts a new portfolio row and returns its generated ID.
func (r *PortfolioRepository) InsertPortfolio(ctx context.Context, portfolio model.Portfolio) (string, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO portfolio (id, user_id, name, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		id,
		portfolio.UserID,
		portfolio.Name,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert into portfolio table: %w", err)
	}

	return id, nil
}
