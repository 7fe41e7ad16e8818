package account

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type accountService struct {
	marketStore   core.IMarketStore
	positionStore core.IPositionStore
	priceService  core.IPriceOracleService
}

// New new account service
func New(
	marketStore core.IMarketStore,
	positionStore core.IPositionStore,
	priceService core.IPriceOracleService,
) core.IAccountService {
	return &accountService{
		marketStore:   marketStore,
		positionStore: positionStore,
		priceService:  priceService,
	}
}

// CalculateLiquidity values every position of the user.
//
// Collateral legs are discounted by the collateral factor, debt legs carry
// the full borrow balance plus any outstanding flash loan liability. All
// prices come from the checked oracle path: one stale reading fails the
// whole calculation rather than silently under-counting a leg.
func (s *accountService) CalculateLiquidity(ctx context.Context, tx *db.DB, userID string, now time.Time) (*core.AccountLiquidity, error) {
	positions, err := s.positionStore.FindByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	result := &core.AccountLiquidity{
		UserID:          userID,
		CollateralValue: decimal.Zero,
		DebtValue:       decimal.Zero,
	}

	for _, p := range positions {
		market, err := s.marketStore.Find(ctx, tx, p.AssetID)
		if err != nil {
			return nil, err
		}

		price, err := s.priceService.GetPrice(ctx, market, now)
		if err != nil {
			return nil, err
		}

		if supply := lever.SupplyBalance(p, market); supply.IsPositive() {
			value := supply.Mul(price.Price).Mul(market.CollateralFactor)
			result.CollateralValue = result.CollateralValue.Add(value)
		}

		if borrow := lever.BorrowBalance(p, market); borrow.IsPositive() {
			result.DebtValue = result.DebtValue.Add(borrow.Mul(price.Price))
		}

		if p.FlashOutstanding.IsPositive() {
			result.DebtValue = result.DebtValue.Add(p.FlashOutstanding.Mul(price.Price))
		}
	}

	return result, nil
}

func (s *accountService) CurBorrowBalance(ctx context.Context, position *core.Position, market *core.Market) decimal.Decimal {
	return lever.BorrowBalance(position, market)
}

func (s *accountService) CurSupplyBalance(ctx context.Context, position *core.Position, market *core.Market) decimal.Decimal {
	return lever.SupplyBalance(position, market)
}

// HasBorrows reports whether the user carries any debt, the recorded
// flash loan liability included
func (s *accountService) HasBorrows(ctx context.Context, tx *db.DB, userID string) (bool, error) {
	positions, err := s.positionStore.FindByUser(ctx, tx, userID)
	if err != nil {
		return false, err
	}

	for _, p := range positions {
		if p.BorrowPrincipal.IsPositive() || p.FlashOutstanding.IsPositive() {
			return true, nil
		}
	}

	return false, nil
}
