package lever

import (
	"time"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// AccrueInterest advances the market indices and totals to now.
//
// Calling convention: every operation that reads or mutates a borrow or
// supply balance must run this first, synchronously, for that market.
// Zero elapsed time is a no-op, so the function is idempotent within one
// logical step.
func AccrueInterest(market *core.Market, now time.Time) {
	if !market.BorrowIndex.IsPositive() {
		market.BorrowIndex = decimal.New(1, 0)
	}
	if !market.SupplyIndex.IsPositive() {
		market.SupplyIndex = decimal.New(1, 0)
	}

	if market.LastAccruedAt == 0 {
		market.LastAccruedAt = now.Unix()
		return
	}

	elapsed := now.Unix() - market.LastAccruedAt
	if elapsed <= 0 {
		return
	}

	utilization := UtilizationRate(market.TotalCash, market.TotalBorrows)

	borrowRate := GetBorrowRatePerSecond(utilization, market.BaseRate, market.Multiplier, market.JumpMultiplier, market.Kink)
	timesBorrowRate := borrowRate.Mul(decimal.NewFromInt(elapsed))
	interestAccumulated := market.TotalBorrows.Mul(timesBorrowRate).Truncate(MaxPrecision)

	market.TotalBorrows = market.TotalBorrows.Add(interestAccumulated)
	market.Reserves = market.Reserves.Add(interestAccumulated.Mul(market.ReserveFactor).Truncate(MaxPrecision))
	// debt owed to the protocol rounds up
	market.BorrowIndex = market.BorrowIndex.Add(
		number.Ceil(timesBorrowRate.Mul(market.BorrowIndex), MaxPrecision))

	// credit owed to suppliers rounds down
	supplyRate := GetSupplyRatePerSecond(utilization, market.BaseRate, market.Multiplier, market.JumpMultiplier, market.Kink, market.ReserveFactor)
	timesSupplyRate := supplyRate.Mul(decimal.NewFromInt(elapsed))
	market.SupplyIndex = market.SupplyIndex.Add(
		number.Floor(timesSupplyRate.Mul(market.SupplyIndex), MaxPrecision))

	market.LastAccruedAt = now.Unix()
}
