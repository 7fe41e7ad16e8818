package lever

import (
	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear seconds per year
	SecondsPerYear = decimal.NewFromInt(31536000)
	// MaxReserveFactor hard ceiling of the reserve factor
	MaxReserveFactor = decimal.NewFromFloat(0.5)
	// CloseFactorMin min of close factor, must be strictly greater than this value
	CloseFactorMin = decimal.NewFromFloat(0.05)
	// CloseFactorMax max of close factor, must not exceed this value
	CloseFactorMax = decimal.NewFromInt(1)
	// CollateralFactorMax max of collateral factor
	CollateralFactorMax = decimal.NewFromFloat(0.9)
	// LiquidationIncentiveMin must be no less than this value
	LiquidationIncentiveMin = decimal.NewFromFloat(0.01)
	// LiquidationIncentiveMax must be no greater than this value
	LiquidationIncentiveMax = decimal.NewFromFloat(0.9)
	// MaxPrecision max precision
	MaxPrecision int32 = 16

	one = decimal.New(1, 0)
)

// UtilizationRate fraction of the market liquidity currently borrowed
//
// utilization = total_borrows / (total_borrows + total_cash), zero when the
// denominator is zero. The result is clamped to [0, 1]: values above 1 feed
// undefined jump multiplier behavior downstream, so the clamp is a
// correctness bound, not cosmetics.
func UtilizationRate(cash, borrows decimal.Decimal) decimal.Decimal {
	total := cash.Add(borrows)
	if !total.IsPositive() || !borrows.IsPositive() {
		return decimal.Zero
	}

	u := borrows.Div(total).Truncate(MaxPrecision)
	if u.GreaterThan(one) {
		return one
	}

	return u
}

// GetBorrowRate borrow rate per year at the given utilization
func GetBorrowRate(utilizationRate, baseRate, multiplier, jumpMultiplier, kink decimal.Decimal) decimal.Decimal {
	if kink.IsZero() || utilizationRate.LessThanOrEqual(kink) {
		return utilizationRate.Mul(multiplier).Add(baseRate).Truncate(MaxPrecision)
	}

	normalRate := kink.Mul(multiplier).Add(baseRate)
	excessUtilRate := utilizationRate.Sub(kink)
	return excessUtilRate.Mul(jumpMultiplier).Add(normalRate).Truncate(MaxPrecision)
}

// GetSupplyRate supply rate per year at the given utilization
//
// supply_rate = borrow_rate * utilization * (1 - reserve_factor)
func GetSupplyRate(utilizationRate, baseRate, multiplier, jumpMultiplier, kink, reserveFactor decimal.Decimal) decimal.Decimal {
	borrowRate := GetBorrowRate(utilizationRate, baseRate, multiplier, jumpMultiplier, kink)
	rateToPool := borrowRate.Mul(one.Sub(reserveFactor))
	return utilizationRate.Mul(rateToPool).Truncate(MaxPrecision)
}

// GetBorrowRatePerSecond borrow rate per second
func GetBorrowRatePerSecond(utilizationRate, baseRate, multiplier, jumpMultiplier, kink decimal.Decimal) decimal.Decimal {
	return GetBorrowRate(utilizationRate, baseRate, multiplier, jumpMultiplier, kink).
		Div(SecondsPerYear).Truncate(MaxPrecision)
}

// GetSupplyRatePerSecond supply rate per second
func GetSupplyRatePerSecond(utilizationRate, baseRate, multiplier, jumpMultiplier, kink, reserveFactor decimal.Decimal) decimal.Decimal {
	return GetSupplyRate(utilizationRate, baseRate, multiplier, jumpMultiplier, kink, reserveFactor).
		Div(SecondsPerYear).Truncate(MaxPrecision)
}
