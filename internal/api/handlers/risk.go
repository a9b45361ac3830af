package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dividendlab/cashflow-backend/internal/api/response"
	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/risk"
)

// RiskHandler handles portfolio risk report requests.
type RiskHandler struct {
	analyzer *risk.Analyzer
}

// NewRiskHandler creates a new RiskHandler.
func NewRiskHandler(analyzer *risk.Analyzer) *RiskHandler {
	return &RiskHandler{
		analyzer: analyzer,
	}
}

// Report generates the composite risk report for a portfolio.
//
// Endpoint: GET /api/risk/{uuid}
// Response: 200 OK with RiskReport
// Error: 404 Not Found when the portfolio has no open holdings, so callers
// can tell "nothing to analyze" apart from a low-risk portfolio
// Error: 500 Internal Server Error if the analysis fails
func (h *RiskHandler) Report(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	report, err := h.analyzer.GenerateRiskReport(r.Context(), portfolioID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoHoldings) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrNoHoldings.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAssessRisk.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}
