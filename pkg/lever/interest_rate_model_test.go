package lever

import (
	"testing"

	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtilizationRate(t *testing.T) {
	t.Run("empty market", func(t *testing.T) {
		u := UtilizationRate(decimal.Zero, decimal.Zero)
		assert.True(t, u.IsZero(), "0/0 utilization should be zero, not a division fault")
	})

	t.Run("no cash clamps to one", func(t *testing.T) {
		u := UtilizationRate(decimal.Zero, number.Decimal("500"))
		assert.True(t, u.Equal(decimal.New(1, 0)))
	})

	t.Run("half borrowed", func(t *testing.T) {
		u := UtilizationRate(number.Decimal("100"), number.Decimal("100"))
		assert.Equal(t, "0.5", u.String())
	})

	t.Run("never above one", func(t *testing.T) {
		// borrows can transiently exceed liquidity after seizures
		u := UtilizationRate(number.Decimal("-10"), number.Decimal("100"))
		assert.True(t, u.LessThanOrEqual(decimal.New(1, 0)))
	})
}

func TestGetBorrowRate(t *testing.T) {
	var (
		base = number.Decimal("0.025")
		mul  = number.Decimal("0.2")
		jump = number.Decimal("1.5")
		kink = number.Decimal("0.8")
	)

	t.Run("below kink", func(t *testing.T) {
		rate := GetBorrowRate(number.Decimal("0.5"), base, mul, jump, kink)
		assert.Equal(t, "0.125", rate.String())
	})

	t.Run("at kink", func(t *testing.T) {
		rate := GetBorrowRate(kink, base, mul, jump, kink)
		assert.Equal(t, "0.185", rate.String())
	})

	t.Run("full utilization", func(t *testing.T) {
		// base + kink*multiplier + (1-kink)*jump_multiplier
		rate := GetBorrowRate(decimal.New(1, 0), base, mul, jump, kink)
		assert.Equal(t, "0.485", rate.String())
	})

	t.Run("monotone in utilization", func(t *testing.T) {
		prev := decimal.Zero
		for u := decimal.Zero; u.LessThanOrEqual(decimal.New(1, 0)); u = u.Add(number.Decimal("0.05")) {
			rate := GetBorrowRate(u, base, mul, jump, kink)
			require.True(t, rate.GreaterThanOrEqual(prev), "rate decreased at u=%s", u)
			prev = rate
		}
	})
}

func TestGetSupplyRate(t *testing.T) {
	var (
		base = number.Decimal("0.025")
		mul  = number.Decimal("0.2")
		jump = number.Decimal("1.5")
		kink = number.Decimal("0.8")
		rf   = number.Decimal("0.1")
	)

	u := number.Decimal("0.5")
	borrowRate := GetBorrowRate(u, base, mul, jump, kink)
	supplyRate := GetSupplyRate(u, base, mul, jump, kink, rf)

	// supply_rate = borrow_rate * u * (1 - reserve_factor)
	want := borrowRate.Mul(u).Mul(number.Decimal("0.9")).Truncate(MaxPrecision)
	assert.True(t, supplyRate.Equal(want))
	assert.True(t, supplyRate.LessThan(borrowRate))
}
