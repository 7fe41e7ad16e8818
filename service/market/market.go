package market

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type service struct {
	marketStore core.IMarketStore
	paramStore  core.IParamStore
}

// New new market service
func New(
	marketStore core.IMarketStore,
	paramStore core.IParamStore,
) core.IMarketService {
	return &service{
		marketStore: marketStore,
		paramStore:  paramStore,
	}
}

func (s *service) CurUtilizationRate(ctx context.Context, market *core.Market) decimal.Decimal {
	return lever.UtilizationRate(market.TotalCash, market.TotalBorrows)
}

// CurBorrowRate current borrow APY
func (s *service) CurBorrowRate(ctx context.Context, market *core.Market) decimal.Decimal {
	return lever.GetBorrowRate(
		s.CurUtilizationRate(ctx, market),
		market.BaseRate,
		market.Multiplier,
		market.JumpMultiplier,
		market.Kink,
	)
}

// CurSupplyRate current supply APY
func (s *service) CurSupplyRate(ctx context.Context, market *core.Market) decimal.Decimal {
	return lever.GetSupplyRate(
		s.CurUtilizationRate(ctx, market),
		market.BaseRate,
		market.Multiplier,
		market.JumpMultiplier,
		market.Kink,
		market.ReserveFactor,
	)
}

// AccrueInterest applies due parameter changes, advances the indices to
// now and persists the market inside tx.
func (s *service) AccrueInterest(ctx context.Context, tx *db.DB, market *core.Market, now time.Time) error {
	if err := s.applyDueParams(ctx, tx, market, now); err != nil {
		return err
	}

	lever.AccrueInterest(market, now)

	return s.marketStore.Update(ctx, tx, market)
}

// applyDueParams folds effective parameter change records into the market
// before the indices advance
func (s *service) applyDueParams(ctx context.Context, tx *db.DB, market *core.Market, now time.Time) error {
	changes, err := s.paramStore.ListDue(ctx, tx, market.AssetID, now)
	if err != nil {
		return err
	}

	for _, change := range changes {
		// every due record is consumed; invalid ones just take no effect
		if err := s.paramStore.MarkApplied(ctx, tx, change, now); err != nil {
			return err
		}

		switch change.Name {
		case core.ParamReserveFactor:
			// never apply a record above the ceiling, whatever wrote it
			if change.Value.GreaterThan(lever.MaxReserveFactor) || change.Value.IsNegative() {
				continue
			}
			market.ReserveFactor = change.Value
		case core.ParamBorrowCap:
			if change.Value.IsNegative() {
				continue
			}
			market.BorrowCap = change.Value
		}
	}

	return nil
}
