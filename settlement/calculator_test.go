package settlement_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlements/settlement"
)

func TestOwnerShare(t *testing.T) {
	for _, price := range []string{"0", "1", "99.99", "440", "123456.78"} {
		p := decimal.RequireFromString(price)

		share, err := settlement.OwnerShare(p)

		require.NoError(t, err)
		assert.True(t, share.Equal(p), "owner share of %s should be %s, got %s", p, p, share)
	}
}

func TestOwnerShareRejectsNegative(t *testing.T) {
	_, err := settlement.OwnerShare(decimal.RequireFromString("-1"))

	require.ErrorIs(t, err, settlement.ErrInvalidAmount)
}

func TestPlatformProfit(t *testing.T) {
	total := decimal.RequireFromString("500")
	share := decimal.RequireFromString("440")

	profit := settlement.PlatformProfit(total, share)

	assert.True(t, profit.Equal(decimal.RequireFromString("60")))
}

func TestPlatformProfitPlusOwnerShareEqualsTotal(t *testing.T) {
	for _, tc := range []struct{ total, ticket string }{
		{"500", "440"},
		{"112", "100"},
		{"0.03", "0.01"},
	} {
		total := decimal.RequireFromString(tc.total)
		share, err := settlement.OwnerShare(decimal.RequireFromString(tc.ticket))
		require.NoError(t, err)

		profit := settlement.PlatformProfit(total, share)

		assert.True(t, share.Add(profit).Equal(total))
	}
}

func TestApproxTicketPrice(t *testing.T) {
	got := settlement.ApproxTicketPrice(decimal.RequireFromString("112"))

	assert.True(t, got.Equal(decimal.RequireFromString("100")), "112 / 1.12 should be 100, got %s", got)
}

func TestMinorUnits(t *testing.T) {
	for _, tc := range []struct {
		amount string
		want   int64
	}{
		{"440", 44000},
		{"112", 11200},
		{"99.99", 9999},
		{"0.005", 1},
		{"0", 0},
	} {
		assert.Equal(t, tc.want, settlement.MinorUnits(decimal.RequireFromString(tc.amount)), "amount %s", tc.amount)
	}
}

func TestValidatePositive(t *testing.T) {
	require.NoError(t, settlement.ValidatePositive(decimal.RequireFromString("0.01")))

	assert.ErrorIs(t, settlement.ValidatePositive(decimal.Zero), settlement.ErrInvalidAmount)
	assert.ErrorIs(t, settlement.ValidatePositive(decimal.RequireFromString("-5")), settlement.ErrInvalidAmount)
}
