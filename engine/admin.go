package engine

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// SetReserveFactor schedules a reserve factor change for the market.
// The change takes effect after the governance delay; accrual applies it
// once due.
func (e *Engine) SetReserveFactor(ctx context.Context, assetID string, value decimal.Decimal) error {
	if value.IsNegative() {
		return core.ErrInvalidAmount
	}

	if value.GreaterThan(lever.MaxReserveFactor) {
		return core.ErrReserveFactorTooHigh
	}

	return e.scheduleParam(ctx, assetID, core.ParamReserveFactor, value)
}

// SetBorrowCap schedules a borrow cap change for the market; zero lifts
// the cap.
func (e *Engine) SetBorrowCap(ctx context.Context, assetID string, value decimal.Decimal) error {
	if value.IsNegative() {
		return core.ErrInvalidAmount
	}

	return e.scheduleParam(ctx, assetID, core.ParamBorrowCap, value)
}

func (e *Engine) scheduleParam(ctx context.Context, assetID, name string, value decimal.Decimal) error {
	return e.run(ctx, nil, func(ctx context.Context, s *session) error {
		log := logger.FromContext(ctx).WithField("event", "param_change")

		market, err := s.market(ctx, assetID)
		if err != nil {
			return err
		}

		change := &core.ParamChange{
			AssetID:     assetID,
			Name:        name,
			Value:       value,
			EffectiveAt: s.now.Add(s.eng.cfg.GovDelay),
		}
		if err := s.eng.paramStore.Create(ctx, s.tx, change); err != nil {
			return err
		}

		log.Infoln("schedule", name, "=", value, "for", market.Symbol, "at", change.EffectiveAt)

		event := &core.Event{
			TraceID: id.GenTraceID(),
			Action:  core.ActionParamChange,
			AssetID: assetID,
			Amount:  value,
		}
		if err := event.SetData(map[string]interface{}{
			"name":         name,
			"effective_at": change.EffectiveAt.Unix(),
		}); err != nil {
			return err
		}

		return s.emit(ctx, event)
	})
}

// SetMarketStatus opens or closes the market with immediate effect.
// Closing only blocks new borrows; repayments, withdrawals and
// liquidations keep working.
func (e *Engine) SetMarketStatus(ctx context.Context, assetID string, status core.MarketStatus) error {
	return e.run(ctx, nil, func(ctx context.Context, s *session) error {
		market, err := s.market(ctx, assetID)
		if err != nil {
			return err
		}

		if market.Status == status {
			return nil
		}

		market.Status = status
		if err := s.eng.marketStore.Update(ctx, s.tx, market); err != nil {
			return err
		}

		logger.FromContext(ctx).
			WithField("event", "market_status").
			Infoln(market.Symbol, "status", status)
		return nil
	})
}

// Accrue advances the market indices to now; anyone may trigger it.
// Calls within the configured gap of the last accrual are cheap no-ops
// that never take the market lock.
func (e *Engine) Accrue(ctx context.Context, assetID string) error {
	market, err := e.marketStore.Find(ctx, nil, assetID)
	if err != nil {
		return err
	}

	last := time.Unix(market.LastAccruedAt, 0)
	if market.LastAccruedAt > 0 && time.Since(last) < e.cfg.MinAccrualGap {
		return nil
	}

	return e.run(ctx, nil, func(ctx context.Context, s *session) error {
		_, err := s.market(ctx, assetID)
		return err
	})
}
