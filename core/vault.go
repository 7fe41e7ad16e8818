package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// VaultUserID holder id of the pool cash
const VaultUserID = "vault"

// Balance fungible token balance of a holder
type Balance struct {
	ID      uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID  string          `sql:"size:36;unique_index:balance_idx" json:"user_id"`
	AssetID string          `sql:"size:36;unique_index:balance_idx" json:"asset_id"`
	Amount  decimal.Decimal `sql:"type:decimal(32,16)" json:"amount"`
	Version int64           `sql:"default:0" json:"version"`

	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IVaultStore token transfer primitive
//
// Transfer atomically debits from and credits to within tx; it fails with
// ErrInsufficientBalance when the debit side is short.
type IVaultStore interface {
	Transfer(ctx context.Context, tx *db.DB, from, to, assetID string, amount decimal.Decimal) error
	Credit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal) error
	Balance(ctx context.Context, tx *db.DB, userID, assetID string) (decimal.Decimal, error)
	FindByUser(ctx context.Context, userID string) ([]*Balance, error)
}
