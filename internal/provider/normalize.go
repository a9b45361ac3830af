package provider

import (
	"strconv"
	"strings"
	"time"
)

// normalizeSymbol uppercases a ticker and strips whitespace and the leading
// "$" some feeds prefix.
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(symbol, "$", "")))
}

// parseDate parses a provider date string, failing soft: a malformed or empty
// value becomes the zero time (field absent) rather than an error.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// coerceAmount converts a provider-native monetary value into a non-negative
// float64. Non-numeric and negative values coerce to zero, which downstream
// consumers treat as excludable.
func coerceAmount(value any) float64 {
	amount := coerceNumber(value)
	if amount < 0 {
		return 0
	}
	return amount
}

// coerceNumber converts a loosely typed provider value into a float64,
// keeping sign. Fundamentals such as net income are legitimately negative.
func coerceNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
