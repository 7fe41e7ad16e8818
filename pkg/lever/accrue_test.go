package lever

import (
	"testing"
	"time"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMarket() *core.Market {
	return &core.Market{
		AssetID:        "a1",
		Symbol:         "BTC",
		TotalCash:      number.Decimal("1000"),
		TotalBorrows:   number.Decimal("500"),
		Reserves:       number.Decimal("10"),
		BorrowIndex:    decimal.New(1, 0),
		SupplyIndex:    decimal.New(1, 0),
		LastAccruedAt:  1600000000,
		ReserveFactor:  number.Decimal("0.1"),
		BaseRate:       number.Decimal("0.025"),
		Multiplier:     number.Decimal("0.2"),
		JumpMultiplier: number.Decimal("1.5"),
		Kink:           number.Decimal("0.8"),
	}
}

func TestAccrueInterest(t *testing.T) {
	market := newTestMarket()
	now := time.Unix(market.LastAccruedAt+3600, 0)

	borrowsBefore := market.TotalBorrows
	reservesBefore := market.Reserves

	AccrueInterest(market, now)

	require.Equal(t, now.Unix(), market.LastAccruedAt)
	assert.True(t, market.TotalBorrows.GreaterThan(borrowsBefore), "interest should accumulate on borrows")
	assert.True(t, market.Reserves.GreaterThan(reservesBefore), "a reserve cut should accumulate")
	assert.True(t, market.BorrowIndex.GreaterThan(decimal.New(1, 0)))
	assert.True(t, market.SupplyIndex.GreaterThan(decimal.New(1, 0)))

	interest := market.TotalBorrows.Sub(borrowsBefore)
	reserveCut := market.Reserves.Sub(reservesBefore)
	assert.True(t, reserveCut.Equal(interest.Mul(market.ReserveFactor).Truncate(MaxPrecision)))
}

func TestAccrueInterestIdempotent(t *testing.T) {
	market := newTestMarket()
	now := time.Unix(market.LastAccruedAt+600, 0)

	AccrueInterest(market, now)
	snapshot := *market
	AccrueInterest(market, now)

	assert.True(t, snapshot.TotalBorrows.Equal(market.TotalBorrows))
	assert.True(t, snapshot.Reserves.Equal(market.Reserves))
	assert.True(t, snapshot.BorrowIndex.Equal(market.BorrowIndex))
	assert.True(t, snapshot.SupplyIndex.Equal(market.SupplyIndex))
	assert.Equal(t, snapshot.LastAccruedAt, market.LastAccruedAt)
}

func TestAccrueInterestMonotone(t *testing.T) {
	market := newTestMarket()

	prevBorrowIndex := market.BorrowIndex
	prevSupplyIndex := market.SupplyIndex
	prevAt := market.LastAccruedAt

	for i := int64(1); i <= 48; i++ {
		AccrueInterest(market, time.Unix(1600000000+i*1800, 0))

		require.True(t, market.BorrowIndex.GreaterThanOrEqual(prevBorrowIndex))
		require.True(t, market.SupplyIndex.GreaterThanOrEqual(prevSupplyIndex))
		require.True(t, market.LastAccruedAt >= prevAt)
		// total_cash + total_borrows - reserves never goes negative
		require.False(t, market.Liquidity().IsNegative())

		prevBorrowIndex = market.BorrowIndex
		prevSupplyIndex = market.SupplyIndex
		prevAt = market.LastAccruedAt
	}
}

func TestAccrueInterestFirstTouch(t *testing.T) {
	market := newTestMarket()
	market.LastAccruedAt = 0
	market.BorrowIndex = decimal.Zero
	market.SupplyIndex = decimal.Zero

	now := time.Unix(1600003600, 0)
	AccrueInterest(market, now)

	// first touch only anchors the clock and normalizes the indices
	assert.Equal(t, now.Unix(), market.LastAccruedAt)
	assert.True(t, market.BorrowIndex.Equal(decimal.New(1, 0)))
	assert.True(t, market.SupplyIndex.Equal(decimal.New(1, 0)))
	assert.True(t, market.TotalBorrows.Equal(number.Decimal("500")))
}
