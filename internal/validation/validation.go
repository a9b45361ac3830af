// Package validation provides request-level input validation.
package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dividendlab/cashflow-backend/internal/apperrors"
)

// ValidateUUID checks that a string is a well-formed UUID.
func ValidateUUID(id string) error {
	if id == "" {
		return apperrors.ErrEmptyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidUUID, id)
	}
	return nil
}

// ValidateSymbol checks that a ticker symbol is usable after trimming.
// Providers handle casing themselves.
func ValidateSymbol(symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return apperrors.ErrEmptySymbol
	}
	return nil
}
