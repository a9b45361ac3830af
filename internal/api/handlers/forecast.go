package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dividendlab/cashflow-backend/internal/api/response"
	"github.com/dividendlab/cashflow-backend/internal/apperrors"
	"github.com/dividendlab/cashflow-backend/internal/forecast"
)

// Forecast defaults applied when query parameters are absent.
const (
	defaultForecastMonths = 12
	defaultScenario       = forecast.ScenarioConservative
)

// ForecastHandler handles income projection requests.
type ForecastHandler struct {
	engine *forecast.Engine
}

// NewForecastHandler creates a new ForecastHandler.
func NewForecastHandler(engine *forecast.Engine) *ForecastHandler {
	return &ForecastHandler{
		engine: engine,
	}
}

// Forecast projects monthly dividend income for a portfolio.
//
// Endpoint: GET /api/forecast/{uuid}
// Query: months (1-120, default 12), reinvest (bool), deposit (monthly
// amount), scenario (conservative|moderate|optimistic|pessimistic)
// Response: 200 OK with ForecastResult
// Error: 400 Bad Request on malformed query parameters
// Error: 500 Internal Server Error if projection fails
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	opts, err := parseForecastOptions(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid forecast parameters", err.Error())
		return
	}

	result, err := h.engine.ForecastPortfolio(r.Context(), portfolioID, opts)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidForecastHorizon) || errors.Is(err, apperrors.ErrUnknownScenario) {
			response.RespondError(w, http.StatusBadRequest, "invalid forecast parameters", err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToForecast.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// parseForecastOptions reads the projection knobs off the query string,
// filling defaults for absent parameters.
func parseForecastOptions(r *http.Request) (forecast.Options, error) {
	opts := forecast.Options{
		Months:         defaultForecastMonths,
		GrowthScenario: defaultScenario,
	}
	q := r.URL.Query()

	if raw := q.Get("months"); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil {
			return forecast.Options{}, apperrors.ErrInvalidForecastHorizon
		}
		opts.Months = months
	}

	if raw := q.Get("reinvest"); raw != "" {
		reinvest, err := strconv.ParseBool(raw)
		if err != nil {
			return forecast.Options{}, err
		}
		opts.AssumeReinvest = reinvest
	}

	if raw := q.Get("deposit"); raw != "" {
		deposit, err := strconv.ParseFloat(raw, 64)
		if err != nil || deposit < 0 {
			return forecast.Options{}, apperrors.ErrNegativeAmount
		}
		opts.RecurringDeposit = deposit
	}

	if raw := q.Get("scenario"); raw != "" {
		opts.GrowthScenario = raw
	}

	return opts, nil
}
