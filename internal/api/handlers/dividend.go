// Package handlers contains the HTTP layer: thin adapters that parse
// requests and delegate to the domain services.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dividendlab/cashflow-backend/internal/api/response"
	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/dividend"
)

// DividendHandler handles dividend refresh and income calendar requests.
type DividendHandler struct {
	dividendService *dividend.Service
}

// NewDividendHandler creates a new DividendHandler.
func NewDividendHandler(dividendService *dividend.Service) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// RefreshResponse reports how many owned symbols gained new events.
type RefreshResponse struct {
	SymbolsUpdated int `json:"symbolsUpdated"`
}

// Refresh triggers a synchronous refresh of dividend data for every owned
// symbol. Safe to call repeatedly; the refresh is idempotent.
//
// Endpoint: POST /api/dividends/refresh
// Response: 200 OK with RefreshResponse
// Error: 500 Internal Server Error if the refresh fails outright
func (h *DividendHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	updated, err := h.dividendService.RefreshAllDividends(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToReconcile.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, RefreshResponse{SymbolsUpdated: updated})
}

// Calendar returns the dated income calendar for a portfolio's open
// holdings. A portfolio with no holdings yields an empty list.
//
// Endpoint: GET /api/dividends/calendar/{uuid}
// Response: 200 OK with array of IncomeCalendarEntry
// Error: 400 Bad Request if the portfolio ID is invalid (middleware)
// Error: 500 Internal Server Error if the calendar cannot be built
func (h *DividendHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	entries, err := h.dividendService.BuildCalendar(r.Context(), portfolioID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToBuildCalendar.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, entries)
}
