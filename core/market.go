package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// MarketStatus market status
type MarketStatus int

const (
	// MarketStatusOpen market open, all operations allowed
	MarketStatusOpen MarketStatus = iota
	// MarketStatusClose market closed, new borrows rejected
	MarketStatusClose
)

// Market lending market of a single underlying asset
type Market struct {
	ID           uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID      string          `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol       string          `sql:"size:20;unique_index:symbol_idx" json:"symbol"`
	TotalCash    decimal.Decimal `sql:"type:decimal(32,16)" json:"total_cash"`
	TotalBorrows decimal.Decimal `sql:"type:decimal(32,16)" json:"total_borrows"`
	// 系统保留金, taken out of accrued interest
	Reserves decimal.Decimal `sql:"type:decimal(32,16)" json:"reserves"`
	// cumulative borrow interest index, monotonically non-decreasing
	BorrowIndex decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"borrow_index"`
	// cumulative supply interest index, monotonically non-decreasing
	SupplyIndex decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"supply_index"`
	// unix seconds of the last interest accrual
	LastAccruedAt int64 `sql:"default:0" json:"last_accrued_at"`
	// fraction of new interest kept as reserves, (0, 0.5]
	ReserveFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"reserve_factor"`
	// max total borrows, zero means uncapped
	BorrowCap decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"borrow_cap"`
	// 抵押因子 = borrowable value / collateral value, e.g. 0.75
	CollateralFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"collateral_factor"`
	// extra collateral fraction awarded to a liquidator, e.g. 0.1
	LiquidationIncentive decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_incentive"`
	// max fraction of a borrow closable in one liquidation, [0.05, 1]
	CloseFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"close_factor"`
	// max age of an oracle reading in seconds before it is stale
	MaxPriceAge int64 `sql:"default:120" json:"max_price_age"`
	// base borrow rate per year, e.g. 0.025
	BaseRate decimal.Decimal `sql:"type:decimal(20,8)" json:"base_rate"`
	// slope of the borrow rate below the kink, per year
	Multiplier decimal.Decimal `sql:"type:decimal(20,8)" json:"multiplier"`
	// slope of the borrow rate above the kink, per year
	JumpMultiplier decimal.Decimal `sql:"type:decimal(20,8)" json:"jump_multiplier"`
	// utilization point where the jump multiplier kicks in
	Kink    decimal.Decimal `sql:"type:decimal(20,8)" json:"kink"`
	Status  MarketStatus    `sql:"default:0" json:"status"`
	Version int64           `sql:"default:0" json:"version"`

	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IsClosed check whether the market is closed
func (m *Market) IsClosed() bool {
	return m.Status == MarketStatusClose
}

// BorrowAllowed check borrow cap
func (m *Market) BorrowAllowed(amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		return false
	}

	if m.BorrowCap.IsPositive() &&
		m.TotalBorrows.Add(amount).GreaterThan(m.BorrowCap) {
		return false
	}

	return true
}

// Liquidity total liquidity owned by suppliers
//
// liquidity = total_cash + total_borrows - reserves, never negative
func (m *Market) Liquidity() decimal.Decimal {
	return m.TotalCash.Add(m.TotalBorrows).Sub(m.Reserves)
}

// IMarketStore market store interface
type IMarketStore interface {
	Save(ctx context.Context, tx *db.DB, market *Market) error
	Find(ctx context.Context, tx *db.DB, assetID string) (*Market, error)
	FindBySymbol(ctx context.Context, symbol string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	AllAsMap(ctx context.Context) (map[string]*Market, error)
	Update(ctx context.Context, tx *db.DB, market *Market) error
}

// IMarketService market service interface
type IMarketService interface {
	CurUtilizationRate(ctx context.Context, market *Market) decimal.Decimal
	CurBorrowRate(ctx context.Context, market *Market) decimal.Decimal
	CurSupplyRate(ctx context.Context, market *Market) decimal.Decimal
	// AccrueInterest advances the market indices to now and persists the
	// market. It must run before any balance-dependent read or mutation.
	AccrueInterest(ctx context.Context, tx *db.DB, market *Market, now time.Time) error
}
