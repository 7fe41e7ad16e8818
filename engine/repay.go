package engine

import (
	"context"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Repay pays the user's borrow down by up to amount.
//
// The repayment is capped at the current borrow balance; the excess is
// never pulled from the payer.
func (e *Engine) Repay(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return e.run(ctx, []string{userID}, func(ctx context.Context, s *session) error {
		return s.repay(ctx, userID, assetID, amount)
	})
}

func (s *session) repay(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("event", "repay")

	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}

	market, err := s.market(ctx, assetID)
	if err != nil {
		return err
	}

	position, err := s.eng.positionStore.Find(ctx, s.tx, userID, assetID)
	if err != nil {
		return err
	}

	borrowBalance := lever.BorrowBalance(position, market)
	if !borrowBalance.IsPositive() {
		return core.ErrPositionNotFound
	}

	actual := decimal.Min(amount, borrowBalance)

	if err := s.eng.vaultStore.Transfer(ctx, s.tx, userID, core.VaultUserID, assetID, actual); err != nil {
		return err
	}

	position.BorrowPrincipal = borrowBalance.Sub(actual)
	position.BorrowIndex = market.BorrowIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, position); err != nil {
		return err
	}

	market.TotalCash = market.TotalCash.Add(actual)
	market.TotalBorrows = market.TotalBorrows.Sub(actual)
	if market.TotalBorrows.IsNegative() {
		// rounding crumbs from ceil-ed balances
		market.TotalBorrows = decimal.Zero
	}
	if err := s.eng.marketStore.Update(ctx, s.tx, market); err != nil {
		return err
	}

	log.Infoln("repay", actual, market.Symbol, "by", userID)

	return s.emit(ctx, &core.Event{
		TraceID: id.GenTraceID(),
		UserID:  userID,
		Action:  core.ActionRepay,
		AssetID: assetID,
		Amount:  actual,
	})
}
