package engine

import (
	"context"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Deposit supplies amount of the asset into the market
func (e *Engine) Deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return e.run(ctx, []string{userID}, func(ctx context.Context, s *session) error {
		return s.deposit(ctx, userID, assetID, amount)
	})
}

func (s *session) deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("event", "deposit")

	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}

	market, err := s.market(ctx, assetID)
	if err != nil {
		return err
	}

	// pull the tokens first, the failure mode is the payer being short
	if err := s.eng.vaultStore.Transfer(ctx, s.tx, userID, core.VaultUserID, assetID, amount); err != nil {
		return err
	}

	position, err := s.eng.positionStore.Find(ctx, s.tx, userID, assetID)
	if err != nil {
		return err
	}

	position.SupplyPrincipal = lever.SupplyBalance(position, market).Add(amount)
	position.SupplyIndex = market.SupplyIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, position); err != nil {
		return err
	}

	market.TotalCash = market.TotalCash.Add(amount)
	if err := s.eng.marketStore.Update(ctx, s.tx, market); err != nil {
		return err
	}

	log.Infoln("deposit", amount, market.Symbol, "by", userID)

	return s.emit(ctx, &core.Event{
		TraceID: id.GenTraceID(),
		UserID:  userID,
		Action:  core.ActionDeposit,
		AssetID: assetID,
		Amount:  amount,
	})
}
