package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/dividendlab/cashflow-backend/internal/api"
	"github.com/dividendlab/cashflow-backend/internal/config"
	"github.com/dividendlab/cashflow-backend/internal/database"
	"github.com/dividendlab/cashflow-backend/internal/dividend"
	"github.com/dividendlab/cashflow-backend/internal/forecast"
	"github.com/dividendlab/cashflow-backend/internal/pattern"
	"github.com/dividendlab/cashflow-backend/internal/price"
	"github.com/dividendlab/cashflow-backend/internal/provider"
	"github.com/dividendlab/cashflow-backend/internal/repository"
	"github.com/dividendlab/cashflow-backend/internal/risk"
	"github.com/dividendlab/cashflow-backend/internal/scheduler"
	"github.com/dividendlab/cashflow-backend/internal/secrets"
)

const quoteCacheTTL = 60 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	eventRepo := repository.NewDividendEventRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Resolve provider credentials, preferring the encrypted stored copy
	var encryptor *secrets.Encryptor
	if cfg.Secrets.FernetKey != "" {
		encryptor, err = secrets.NewEncryptor(cfg.Secrets.FernetKey)
		if err != nil {
			log.Fatalf("Failed to initialize credential encryption: %v", err)
		}
	}
	credentials := secrets.NewCredentialStore(settingRepo, encryptor)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	polygonKey, err := credentials.ProviderKey(startupCtx, "polygon", cfg.Providers.PolygonAPIKey)
	cancelStartup()
	if err != nil {
		log.Fatalf("Failed to resolve provider credentials: %v", err)
	}

	// Shared rate limiter across all provider HTTP calls
	limiter := rate.NewLimiter(rate.Limit(cfg.Providers.RatePerSecond), 1)

	// Dividend sources in configured priority order
	sources := provider.OrderByPriority([]provider.Source{
		provider.NewPolygonClient(polygonKey, limiter),
		provider.NewYahooClient(limiter),
	}, cfg.Providers.Priority)

	dividendService := dividend.NewService(
		eventRepo,
		holdingRepo,
		sources,
		cfg.Providers.FetchTimeout,
	)

	// Price resolution chain with TTL cache
	priceResolver := price.NewResolver(
		[]price.Quoter{
			price.NewPolygonQuoter(polygonKey, limiter),
			price.NewYahooQuoter(limiter),
		},
		quoteCacheTTL,
		cfg.Providers.FetchTimeout,
		cfg.Providers.BatchTimeout,
	)

	// Analysis services
	patternAnalyzer := pattern.NewAnalyzer(eventRepo)
	forecastEngine := forecast.NewEngine(holdingRepo, patternAnalyzer, priceResolver)
	riskAnalyzer := risk.NewAnalyzer(
		holdingRepo,
		eventRepo,
		priceResolver,
		provider.NewPolygonFinancialsClient(polygonKey, limiter),
	)

	// Background refresh
	sched := scheduler.New(dividendService)
	if cfg.Scheduler.Enabled {
		if err := sched.Start(cfg.Scheduler.RefreshSpec); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Create router
	router := api.NewRouter(api.Deps{
		DB:              db,
		DividendService: dividendService,
		ForecastEngine:  forecastEngine,
		RiskAnalyzer:    riskAnalyzer,
		HoldingRepo:     holdingRepo,
		PortfolioRepo:   portfolioRepo,
		Refresher:       sched,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
