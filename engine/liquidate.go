package engine

import (
	"context"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/lever"
	"lever/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Liquidate repays part of an unhealthy borrower's debt and seizes a
// discounted slice of their collateral for the liquidator.
//
// The seize price is read twice: once from the stored oracle reading and
// once live from the feed. A relative gap above the configured deviation
// aborts the liquidation with no state change, so a single stale or
// manipulated reading cannot misprice the seizure.
func (e *Engine) Liquidate(ctx context.Context, liquidatorID, borrowerID, debtAssetID, collateralAssetID string, repayAmount decimal.Decimal) error {
	if liquidatorID == borrowerID {
		return core.ErrOperationForbidden
	}

	return e.run(ctx, []string{liquidatorID, borrowerID}, func(ctx context.Context, s *session) error {
		return s.liquidate(ctx, liquidatorID, borrowerID, debtAssetID, collateralAssetID, repayAmount)
	})
}

func (s *session) liquidate(ctx context.Context, liquidatorID, borrowerID, debtAssetID, collateralAssetID string, repayAmount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("event", "liquidate")

	repayAmount, err := checkAmount(repayAmount)
	if err != nil {
		return err
	}

	markets, err := s.userMarkets(ctx, borrowerID, debtAssetID, collateralAssetID)
	if err != nil {
		return err
	}

	debtMarket := markets[debtAssetID]
	collateralMarket := markets[collateralAssetID]

	liquidity, err := s.eng.accountz.CalculateLiquidity(ctx, s.tx, borrowerID, s.now)
	if err != nil {
		return err
	}

	if liquidity.Healthy() {
		return core.ErrPositionHealthy
	}

	debtPosition, err := s.eng.positionStore.Find(ctx, s.tx, borrowerID, debtAssetID)
	if err != nil {
		return err
	}

	borrowBalance := lever.BorrowBalance(debtPosition, debtMarket)
	if !borrowBalance.IsPositive() {
		return core.ErrPositionNotFound
	}

	// partial liquidation: at most the close factor slice of the debt is
	// repayable in one call
	actual := decimal.Min(repayAmount, borrowBalance.Mul(debtMarket.CloseFactor).Truncate(8))
	if !actual.IsPositive() {
		return core.ErrInvalidAmount
	}

	debtPrice, err := s.eng.oraclez.GetPrice(ctx, debtMarket, s.now)
	if err != nil {
		return err
	}

	// first seize price read, the stored checked reading
	stored, err := s.eng.oraclez.GetPrice(ctx, collateralMarket, s.now)
	if err != nil {
		return err
	}

	// second read, live off the feed
	ticker, err := s.eng.oraclez.PullPriceTicker(ctx, collateralMarket.Symbol, s.now)
	if err != nil {
		return err
	}

	if !ticker.Price.IsPositive() {
		return core.ErrStalePrice
	}

	deviation := ticker.Price.Sub(stored.Price).Div(stored.Price).Abs()
	if deviation.GreaterThan(s.eng.cfg.MaxPriceDeviation) {
		log.Infoln("price moved", stored.Price, "->", ticker.Price)
		return core.ErrPriceMovedTooMuch
	}

	seizePrice := ticker.Price

	collateralPosition, err := s.eng.positionStore.Find(ctx, s.tx, borrowerID, collateralAssetID)
	if err != nil {
		return err
	}

	supplyBalance := lever.SupplyBalance(collateralPosition, collateralMarket)

	bonus := decimal.New(1, 0).Add(collateralMarket.LiquidationIncentive)
	seized := number.Floor(actual.Mul(debtPrice.Price).Mul(bonus).Div(seizePrice), 8)

	if seized.GreaterThan(supplyBalance) {
		// collateral short of the full seizure: seize it all and shrink the
		// repayment to match
		seized = supplyBalance
		actual = number.Floor(seized.Mul(seizePrice).Div(bonus).Div(debtPrice.Price), 8)
		if !actual.IsPositive() {
			return core.ErrInsufficientCollateral
		}
	}

	// liquidator covers the debt slice
	if err := s.eng.vaultStore.Transfer(ctx, s.tx, liquidatorID, core.VaultUserID, debtAssetID, actual); err != nil {
		return err
	}

	debtPosition.BorrowPrincipal = borrowBalance.Sub(actual)
	debtPosition.BorrowIndex = debtMarket.BorrowIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, debtPosition); err != nil {
		return err
	}

	debtMarket.TotalCash = debtMarket.TotalCash.Add(actual)
	debtMarket.TotalBorrows = debtMarket.TotalBorrows.Sub(actual)
	if debtMarket.TotalBorrows.IsNegative() {
		debtMarket.TotalBorrows = decimal.Zero
	}
	if err := s.eng.marketStore.Update(ctx, s.tx, debtMarket); err != nil {
		return err
	}

	// collateral moves borrower -> liquidator inside the ledger; market
	// totals are untouched, supply merely changes hands
	collateralPosition.SupplyPrincipal = supplyBalance.Sub(seized)
	collateralPosition.SupplyIndex = collateralMarket.SupplyIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, collateralPosition); err != nil {
		return err
	}

	liquidatorPosition, err := s.eng.positionStore.Find(ctx, s.tx, liquidatorID, collateralAssetID)
	if err != nil {
		return err
	}

	liquidatorPosition.SupplyPrincipal = lever.SupplyBalance(liquidatorPosition, collateralMarket).Add(seized)
	liquidatorPosition.SupplyIndex = collateralMarket.SupplyIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, liquidatorPosition); err != nil {
		return err
	}

	log.Infoln("liquidate", borrowerID, "repay", actual, debtMarket.Symbol, "seize", seized, collateralMarket.Symbol)

	event := &core.Event{
		TraceID: id.GenTraceID(),
		UserID:  liquidatorID,
		Action:  core.ActionLiquidate,
		AssetID: debtAssetID,
		Amount:  actual,
	}
	if err := event.SetData(core.LiquidationData{
		Borrower:      borrowerID,
		Liquidator:    liquidatorID,
		DebtAssetID:   debtAssetID,
		RepayAmount:   actual,
		SeizedAssetID: collateralAssetID,
		SeizedAmount:  seized,
		PriceUsed:     seizePrice,
		BonusFraction: collateralMarket.LiquidationIncentive,
	}); err != nil {
		return err
	}

	return s.emit(ctx, event)
}
