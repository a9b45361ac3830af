// Package api wires the HTTP surface: router, handlers, and middleware.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dividendlab/cashflow-backend/internal/api/handlers"
	custommiddleware "github.com/dividendlab/cashflow-backend/internal/api/middleware"
	"github.com/dividendlab/cashflow-backend/internal/config"
	"github.com/dividendlab/cashflow-backend/internal/dividend"
	"github.com/dividendlab/cashflow-backend/internal/forecast"
	"github.com/dividendlab/cashflow-backend/internal/repository"
	"github.com/dividendlab/cashflow-backend/internal/risk"
)

// Deps carries the services the router exposes.
type Deps struct {
	DB              *sql.DB
	DividendService *dividend.Service
	ForecastEngine  *forecast.Engine
	RiskAnalyzer    *risk.Analyzer
	HoldingRepo     *repository.HoldingRepository
	PortfolioRepo   *repository.PortfolioRepository
	Refresher       handlers.RefreshSubmitter
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps Deps, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.DB)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/dividends", func(r chi.Router) {
			dividendHandler := handlers.NewDividendHandler(deps.DividendService)
			r.Post("/refresh", dividendHandler.Refresh)
			r.Route("/calendar/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", dividendHandler.Calendar)
			})
		})

		r.Route("/forecast/{uuid}", func(r chi.Router) {
			forecastHandler := handlers.NewForecastHandler(deps.ForecastEngine)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", forecastHandler.Forecast)
		})

		r.Route("/risk/{uuid}", func(r chi.Router) {
			riskHandler := handlers.NewRiskHandler(deps.RiskAnalyzer)
			r.Use(custommiddleware.ValidateUUIDMiddleware)
			r.Get("/", riskHandler.Report)
		})

		r.Route("/portfolios", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(deps.PortfolioRepo)
			r.Post("/", portfolioHandler.Create)
		})

		r.Route("/holdings", func(r chi.Router) {
			holdingHandler := handlers.NewHoldingHandler(deps.HoldingRepo, deps.PortfolioRepo, deps.Refresher)
			r.Post("/", holdingHandler.Create)
		})
	})

	return r
}
