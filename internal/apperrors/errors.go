package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound indicates that a holding with the given ID does not exist.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrDividendEventNotFound indicates that a dividend event record does not exist.
	ErrDividendEventNotFound = errors.New("dividend event not found")

	// ErrNoHoldings indicates that a portfolio has no open holdings. Callers
	// must treat this as a distinct state from a zero-valued result: a risk
	// report cannot be computed at all, which is not the same as a portfolio
	// that computed to zero risk.
	ErrNoHoldings = errors.New("no holdings found for portfolio")

	// ErrNoPattern indicates that a symbol has no dividend history to infer a
	// payment pattern from. Consumers exclude the symbol rather than guessing
	// a cadence.
	ErrNoPattern = errors.New("insufficient dividend history for pattern")

	// ErrSettingNotFound indicates that a system setting key does not exist.
	ErrSettingNotFound = errors.New("setting not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrEmptySymbol indicates a symbol parameter is empty or missing.
	ErrEmptySymbol = errors.New("symbol cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidForecastHorizon indicates a forecast months parameter outside
	// the accepted range.
	ErrInvalidForecastHorizon = errors.New("forecast horizon must be between 1 and 120 months")

	// ErrUnknownScenario indicates an unrecognized growth scenario name.
	ErrUnknownScenario = errors.New("unknown growth scenario")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrieveEvents   = errors.New("failed to retrieve dividend events")
	ErrFailedToRetrieveHoldings = errors.New("failed to retrieve holdings")
	ErrFailedToReconcile        = errors.New("failed to reconcile dividend events")
	ErrFailedToBuildCalendar    = errors.New("failed to build income calendar")
	ErrFailedToForecast         = errors.New("failed to compute forecast")
	ErrFailedToAssessRisk       = errors.New("failed to generate risk report")
)
