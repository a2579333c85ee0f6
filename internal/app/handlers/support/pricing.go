package support

import (
	"seabreeze/internal/domain/catalog"
	"seabreeze/internal/domain/pricing"
)

// Calculator builds the pricing calculator for a unit of work, honouring the
// configured currency when one is set.
func Calculator(cat catalog.Repository, currency string) *pricing.Calculator {
	calc := pricing.NewCalculator(cat)
	if currency != "" {
		calc.Currency = currency
	}
	return calc
}

// FallbackCurrency resolves a money input's currency: the request wins, then
// the configured currency, then the system default.
func FallbackCurrency(requested, configured string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return pricing.DefaultCurrency
}
