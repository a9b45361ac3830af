package model

import "time"

// Portfolio represents a portfolio from the database.
type Portfolio struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userID"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Holding represents a position in a symbol within a portfolio.
// A holding with zero shares is logically closed and excluded from
// forecasting and calendar joins.
type Holding struct {
	ID                string    `json:"id"`
	PortfolioID       string    `json:"portfolioID"`
	Symbol            string    `json:"symbol"`
	Shares            float64   `json:"shares"`
	AvgPrice          float64   `json:"avgPrice"` // average cost basis per share
	PurchaseDate      time.Time `json:"purchaseDate,omitzero"`
	ReinvestDividends bool      `json:"reinvestDividends"`
	CreatedAt         time.Time `json:"createdAt,omitzero"`
}
