package engine

import (
	"context"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// TransferCollateral moves supplied collateral from one account to
// another without leaving the protocol. The sender must stay healthy
// after the move.
func (e *Engine) TransferCollateral(ctx context.Context, fromID, toID, assetID string, amount decimal.Decimal) error {
	if fromID == toID {
		return core.ErrOperationForbidden
	}

	return e.run(ctx, []string{fromID, toID}, func(ctx context.Context, s *session) error {
		return s.transferCollateral(ctx, fromID, toID, assetID, amount)
	})
}

func (s *session) transferCollateral(ctx context.Context, fromID, toID, assetID string, amount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("event", "transfer_collateral")

	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}

	markets, err := s.userMarkets(ctx, fromID, assetID)
	if err != nil {
		return err
	}
	market := markets[assetID]

	from, err := s.eng.positionStore.Find(ctx, s.tx, fromID, assetID)
	if err != nil {
		return err
	}

	supplyBalance := lever.SupplyBalance(from, market)
	if supplyBalance.LessThan(amount) {
		return core.ErrInsufficientCollateral
	}

	from.SupplyPrincipal = supplyBalance.Sub(amount)
	from.SupplyIndex = market.SupplyIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, from); err != nil {
		return err
	}

	to, err := s.eng.positionStore.Find(ctx, s.tx, toID, assetID)
	if err != nil {
		return err
	}

	to.SupplyPrincipal = lever.SupplyBalance(to, market).Add(amount)
	to.SupplyIndex = market.SupplyIndex
	if err := s.eng.positionStore.Update(ctx, s.tx, to); err != nil {
		return err
	}

	// sender health is checked against the post-transfer state; a breach
	// rolls both position writes back together
	if err := s.requireHealthy(ctx, fromID); err != nil {
		log.WithError(err).Infoln("transfer denied")
		return err
	}

	log.Infoln("transfer", amount, market.Symbol, fromID, "->", toID)

	event := &core.Event{
		TraceID: id.GenTraceID(),
		UserID:  fromID,
		Action:  core.ActionTransferCollateral,
		AssetID: assetID,
		Amount:  amount,
	}
	if err := event.SetData(map[string]string{"to": toID}); err != nil {
		return err
	}

	return s.emit(ctx, event)
}
