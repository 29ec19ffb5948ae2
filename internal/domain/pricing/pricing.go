package pricing

import (
	"errors"

	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
	ErrInvalidRate   = errors.New("pricing: nightly rate must be positive")
)

// Breakdown is the authoritative price for a stay. It is always derived
// server-side; totals supplied by callers are discarded.
type Breakdown struct {
	Nights  int
	Nightly money.Money
	Total   money.Money
}

// Quote computes the price for a date range at the given nightly rate.
// Pure: same inputs always produce the same breakdown.
func Quote(dr daterange.DateRange, nightly money.Money) (Breakdown, error) {
	if err := dr.Validate(); err != nil {
		return Breakdown{}, err
	}
	if nightly.Currency == "" {
		return Breakdown{}, ErrCurrencyUnset
	}
	if nightly.Amount <= 0 {
		return Breakdown{}, ErrInvalidRate
	}
	nights := dr.Nights()
	return Breakdown{
		Nights:  nights,
		Nightly: nightly,
		Total:   nightly.Multiply(int64(nights)),
	}, nil
}
