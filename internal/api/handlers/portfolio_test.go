package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dividendlab/cashflow-backend/internal/api/handlers"
	"github.com/dividendlab/cashflow-backend/internal/repository"
	"github.com/dividendlab/cashflow-backend/internal/testutil"
)

func TestPortfolioHandler_Create(t *testing.T) {
	t.Run("creates a portfolio and returns its ID", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPortfolioHandler(repository.NewPortfolioRepository(db))

		body := `{"name": "Income Portfolio"}`
		req := httptest.NewRequest(http.MethodPost, "/api/portfolios", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var response map[string]string
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response["id"] == "" {
			t.Error("Expected a generated portfolio ID")
		}
		testutil.AssertRowCount(t, db, "portfolio", 1)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewPortfolioHandler(repository.NewPortfolioRepository(db))

		body := `{"name": "   "}`
		req := httptest.NewRequest(http.MethodPost, "/api/portfolios", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "portfolio", 0)
	})
}
