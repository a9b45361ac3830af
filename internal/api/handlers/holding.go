package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dividendlab/cashflow-backend/internal/api/response"
	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/model"
	"github.com/dividendlab/cashflow-backend/internal/repository"
	"github.com/dividendlab/cashflow-backend/internal/validation"
)

// RefreshSubmitter queues an async dividend refresh for a symbol.
type RefreshSubmitter interface {
	SubmitRefresh(symbol string)
}

// HoldingHandler handles holding creation. Full portfolio CRUD lives in the
// companion management service; this surface only needs enough to register
// positions for forecasting.
type HoldingHandler struct {
	holdingRepo   *repository.HoldingRepository
	portfolioRepo *repository.PortfolioRepository
	refresher     RefreshSubmitter
}

// NewHoldingHandler creates a new HoldingHandler. refresher may be nil when
// no scheduler is running.
func NewHoldingHandler(
	holdingRepo *repository.HoldingRepository,
	portfolioRepo *repository.PortfolioRepository,
	refresher RefreshSubmitter,
) *HoldingHandler {
	return &HoldingHandler{
		holdingRepo:   holdingRepo,
		portfolioRepo: portfolioRepo,
		refresher:     refresher,
	}
}

// CreateHoldingRequest is the body of a holding creation request.
type CreateHoldingRequest struct {
	PortfolioID       string  `json:"portfolioID"`
	Symbol            string  `json:"symbol"`
	Shares            float64 `json:"shares"`
	AvgPrice          float64 `json:"avgPrice"`
	PurchaseDate      string  `json:"purchaseDate,omitempty"` // "2006-01-02"
	ReinvestDividends bool    `json:"reinvestDividends"`
}

// Create registers a holding and queues an async dividend refresh for its
// symbol so forecasts have data without waiting for the nightly sweep.
//
// Endpoint: POST /api/holdings
// Response: 201 Created with {"id": "..."}
// Error: 400 Bad Request on invalid body
// Error: 500 Internal Server Error if the insert fails
func (h *HoldingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUUID(req.PortfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}
	if err := validation.ValidateSymbol(req.Symbol); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid symbol", err.Error())
		return
	}
	if req.Shares <= 0 {
		response.RespondError(w, http.StatusBadRequest, "shares must be positive", "")
		return
	}

	exists, err := h.portfolioRepo.Exists(r.Context(), req.PortfolioID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to verify portfolio", err.Error())
		return
	}
	if !exists {
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), req.PortfolioID)
		return
	}

	var purchaseDate time.Time
	if req.PurchaseDate != "" {
		parsed, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid purchase date", err.Error())
			return
		}
		purchaseDate = parsed
	}

	id, err := h.holdingRepo.InsertHolding(r.Context(), model.Holding{
		PortfolioID:       req.PortfolioID,
		Symbol:            req.Symbol,
		Shares:            req.Shares,
		AvgPrice:          req.AvgPrice,
		PurchaseDate:      purchaseDate,
		ReinvestDividends: req.ReinvestDividends,
	})
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to create holding", err.Error())
		return
	}

	if h.refresher != nil {
		h.refresher.SubmitRefresh(req.Symbol)
	}

	response.RespondJSON(w, http.StatusCreated, map[string]string{"id": id})
}
