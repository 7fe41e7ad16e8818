package engine

import (
	"context"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Borrow draws amount of the asset against the user's collateral
func (e *Engine) Borrow(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return e.run(ctx, []string{userID}, func(ctx context.Context, s *session) error {
		return s.borrow(ctx, userID, assetID, amount)
	})
}

func (s *session) borrow(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("event", "borrow")

	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}

	markets, err := s.userMarkets(ctx, userID, assetID)
	if err != nil {
		return err
	}
	market := markets[assetID]

	if market.IsClosed() {
		return core.ErrMarketClosed
	}

	if !market.BorrowAllowed(amount) {
		return core.ErrBorrowCapExceeded
	}

	if market.TotalCash.LessThan(amount) {
		return core.ErrInsufficientLiquidity
	}

	// collateral check against the liability-inclusive state: any flash
	// loan already recorded on the account weighs into the debt side
	liquidity, err := s.eng.accountz.CalculateLiquidity(ctx, s.tx, userID, s.now)
	if err != nil {
		return err
	}

	price, err := s.eng.oraclez.GetPrice(ctx, market, s.now)
	if err != nil {
		return err
	}

	if amount.Mul(price.Price).GreaterThan(liquidity.Liquidity()) {
		log.Infoln("borrow denied, liquidity", liquidity.Liquidity())
		return core.ErrInsufficientCollateral
	}

	position, err := s.eng.positionStore.Find(ctx, s.tx, userID, assetID)
	if err != nil {
		return err
	}

	position.BorrowPrincipal = lever.BorrowBalance(position, market).Add(amount)
	position.BorrowIndex = market.BorrowIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, position); err != nil {
		return err
	}

	market.TotalCash = market.TotalCash.Sub(amount)
	market.TotalBorrows = market.TotalBorrows.Add(amount)
	if err := s.eng.marketStore.Update(ctx, s.tx, market); err != nil {
		return err
	}

	if err := s.eng.vaultStore.Transfer(ctx, s.tx, core.VaultUserID, userID, assetID, amount); err != nil {
		return err
	}

	log.Infoln("borrow", amount, market.Symbol, "by", userID)

	return s.emit(ctx, &core.Event{
		TraceID: id.GenTraceID(),
		UserID:  userID,
		Action:  core.ActionBorrow,
		AssetID: assetID,
		Amount:  amount,
	})
}
