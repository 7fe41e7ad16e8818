package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// AccountLiquidity oracle-valued snapshot of one account
type AccountLiquidity struct {
	UserID string `json:"user_id"`
	// supply value discounted by the collateral factors
	CollateralValue decimal.Decimal `json:"collateral_value"`
	// borrow value plus any outstanding flash loan liability
	DebtValue decimal.Decimal `json:"debt_value"`
}

// Liquidity remaining borrowable value
func (l *AccountLiquidity) Liquidity() decimal.Decimal {
	return l.CollateralValue.Sub(l.DebtValue)
}

// Healthy reports whether the debt is fully covered
func (l *AccountLiquidity) Healthy() bool {
	return !l.DebtValue.GreaterThan(l.CollateralValue)
}

// HealthFactor collateral value over debt value; zero when the account
// carries no debt, use Healthy for decisions
func (l *AccountLiquidity) HealthFactor() decimal.Decimal {
	if l.DebtValue.IsPositive() {
		return l.CollateralValue.Div(l.DebtValue)
	}

	return decimal.Zero
}

// IAccountService position ledger service
//
// CalculateLiquidity walks every position of the user, accrues nothing
// itself and prices every leg through the checked oracle path; a stale
// reading fails the whole calculation.
type IAccountService interface {
	CalculateLiquidity(ctx context.Context, tx *db.DB, userID string, now time.Time) (*AccountLiquidity, error)
	CurBorrowBalance(ctx context.Context, position *Position, market *Market) decimal.Decimal
	CurSupplyBalance(ctx context.Context, position *Position, market *Market) decimal.Decimal
	HasBorrows(ctx context.Context, tx *db.DB, userID string) (bool, error)
}
