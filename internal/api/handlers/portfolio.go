package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dividendlab/cashflow-backend/internal/api/response"
	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/repository"
)

// PortfolioHandler handles portfolio creation.
type PortfolioHandler struct {
	portfolioRepo *repository.PortfolioRepository
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioRepo *repository.PortfolioRepository) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioRepo: portfolioRepo,
	}
}

// CreatePortfolioRequest is the body of a portfolio creation request.
type CreatePortfolioRequest struct {
	UserID string `json:"userID,omitempty"`
	Name   string `json:"name"`
}

// Create registers a portfolio so holdings can be attached to it.
//
// Endpoint: POST /api/portfolios
// Response: 201 Created with {"id": "..."}
// Error: 400 Bad Request on invalid body
// Error: 500 Internal Server Error if the insert fails
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		response.RespondError(w, http.StatusBadRequest, "name is required", "")
		return
	}

	id, err := h.portfolioRepo.InsertPortfolio(r.Context(), model.Portfolio{
		UserID: req.UserID,
		Name:   strings.TrimSpace(req.Name),
	})
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}
