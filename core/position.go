package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Position per-user, per-asset principal and index snapshots
type Position struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID  string `sql:"size:36;unique_index:position_idx" json:"user_id"`
	AssetID string `sql:"size:36;unique_index:position_idx" json:"asset_id"`
	// supplied principal, scaled by the supply index ratio
	SupplyPrincipal decimal.Decimal `sql:"type:decimal(32,16)" json:"supply_principal"`
	// market supply index at the last supply mutation
	SupplyIndex decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"supply_index"`
	// borrowed principal, scaled by the borrow index ratio
	BorrowPrincipal decimal.Decimal `sql:"type:decimal(32,16)" json:"borrow_principal"`
	// market borrow index at the last borrow mutation
	BorrowIndex decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"borrow_index"`
	// uncollateralized flash loan liability, non zero only while a
	// flash loan callback is executing
	FlashOutstanding decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"flash_outstanding"`
	Version          int64           `sql:"default:0" json:"version"`

	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPositionStore position store interface
//
// read methods accept an optional tx so that callers inside a database
// transaction observe their own uncommitted writes, the recorded flash
// loan liability in particular.
type IPositionStore interface {
	Create(ctx context.Context, tx *db.DB, position *Position) error
	Find(ctx context.Context, tx *db.DB, userID, assetID string) (*Position, error)
	FindByUser(ctx context.Context, tx *db.DB, userID string) ([]*Position, error)
	FindByAsset(ctx context.Context, assetID string) ([]*Position, error)
	Users(ctx context.Context) ([]string, error)
	Update(ctx context.Context, tx *db.DB, position *Position) error
}
