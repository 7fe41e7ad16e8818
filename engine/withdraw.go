package engine

import (
	"context"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Withdraw redeems amount of supplied collateral back to the user
func (e *Engine) Withdraw(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return e.run(ctx, []string{userID}, func(ctx context.Context, s *session) error {
		return s.withdraw(ctx, userID, assetID, amount)
	})
}

func (s *session) withdraw(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("event", "withdraw")

	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}

	markets, err := s.userMarkets(ctx, userID, assetID)
	if err != nil {
		return err
	}
	market := markets[assetID]

	if market.TotalCash.LessThan(amount) {
		return core.ErrInsufficientLiquidity
	}

	position, err := s.eng.positionStore.Find(ctx, s.tx, userID, assetID)
	if err != nil {
		return err
	}

	supplyBalance := lever.SupplyBalance(position, market)
	if supplyBalance.LessThan(amount) {
		return core.ErrInsufficientCollateral
	}

	position.SupplyPrincipal = supplyBalance.Sub(amount)
	position.SupplyIndex = market.SupplyIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, position); err != nil {
		return err
	}

	market.TotalCash = market.TotalCash.Sub(amount)
	if err := s.eng.marketStore.Update(ctx, s.tx, market); err != nil {
		return err
	}

	// post-withdrawal health check, priced through the checked oracle
	// path for every remaining leg; runs against the mutated state so the
	// transaction rolls back on breach
	if err := s.requireHealthy(ctx, userID); err != nil {
		log.WithError(err).Infoln("withdraw denied")
		return err
	}

	if err := s.eng.vaultStore.Transfer(ctx, s.tx, core.VaultUserID, userID, assetID, amount); err != nil {
		return err
	}

	log.Infoln("withdraw", amount, market.Symbol, "by", userID)

	return s.emit(ctx, &core.Event{
		TraceID: id.GenTraceID(),
		UserID:  userID,
		Action:  core.ActionWithdraw,
		AssetID: assetID,
		Amount:  amount,
	})
}

// requireHealthy fails with ErrInsufficientCollateral when the account
// debt is no longer fully covered. Accounts without debt skip the oracle
// round trip entirely.
func (s *session) requireHealthy(ctx context.Context, userID string) error {
	hasBorrows, err := s.eng.accountz.HasBorrows(ctx, s.tx, userID)
	if err != nil {
		return err
	}

	if !hasBorrows {
		return nil
	}

	liquidity, err := s.eng.accountz.CalculateLiquidity(ctx, s.tx, userID, s.now)
	if err != nil {
		return err
	}

	if !liquidity.Healthy() {
		return core.ErrInsufficientCollateral
	}

	return nil
}
