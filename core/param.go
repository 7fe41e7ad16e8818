package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

const (
	// ParamReserveFactor reserve factor change
	ParamReserveFactor = "reserve_factor"
	// ParamBorrowCap borrow cap change
	ParamBorrowCap = "borrow_cap"
)

// ParamChange versioned admin parameter record
//
// A change becomes effective once EffectiveAt passes; accrual applies due
// changes before advancing the indices, so a pending change is never
// special-cased as mutable market state.
type ParamChange struct {
	ID          uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID     string          `sql:"size:36;index:param_asset_idx" json:"asset_id"`
	Name        string          `sql:"size:32" json:"name"`
	Value       decimal.Decimal `sql:"type:decimal(32,16)" json:"value"`
	EffectiveAt time.Time       `json:"effective_at"`
	AppliedAt   sql.NullTime    `json:"applied_at,omitempty"`
	CreatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IParamStore param change store interface
type IParamStore interface {
	Create(ctx context.Context, tx *db.DB, change *ParamChange) error
	ListDue(ctx context.Context, tx *db.DB, assetID string, now time.Time) ([]*ParamChange, error)
	ListPending(ctx context.Context, assetID string) ([]*ParamChange, error)
	MarkApplied(ctx context.Context, tx *db.DB, change *ParamChange, at time.Time) error
}
