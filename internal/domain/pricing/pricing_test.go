package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatbook/internal/domain/pricing"
	"flatbook/internal/domain/shared/daterange"
	"flatbook/internal/domain/shared/money"
)

func mustRange(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, 9, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return dr
}

func TestQuoteMultipliesNightsByRate(t *testing.T) {
	dr := mustRange(t, 10, 14)
	got, err := pricing.Quote(dr, money.Must(12500, "EUR"))
	require.NoError(t, err)

	assert.Equal(t, 4, got.Nights)
	assert.Equal(t, money.Must(50000, "EUR"), got.Total)
	assert.Equal(t, money.Must(12500, "EUR"), got.Nightly)
}

func TestQuoteSingleNight(t *testing.T) {
	dr := mustRange(t, 10, 11)
	got, err := pricing.Quote(dr, money.Must(9900, "USD"))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Nights)
	assert.Equal(t, int64(9900), got.Total.Amount)
}

func TestQuoteIsDeterministic(t *testing.T) {
	dr := mustRange(t, 10, 14)
	first, err := pricing.Quote(dr, money.Must(8000, "EUR"))
	require.NoError(t, err)
	second, err := pricing.Quote(dr, money.Must(8000, "EUR"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestQuoteRejectsBadInputs(t *testing.T) {
	dr := mustRange(t, 10, 14)

	_, err := pricing.Quote(daterange.DateRange{}, money.Must(8000, "EUR"))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = pricing.Quote(dr, money.Money{Amount: 8000})
	assert.ErrorIs(t, err, pricing.ErrCurrencyUnset)

	_, err = pricing.Quote(dr, money.Money{Amount: 0, Currency: "EUR"})
	assert.ErrorIs(t, err, pricing.ErrInvalidRate)
}
