package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Price latest oracle reading of an asset
type Price struct {
	ID      uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	AssetID string          `sql:"size:36;unique_index:idx_prices_asset" json:"asset_id,omitempty"`
	Price   decimal.Decimal `sql:"type:decimal(32,16)" json:"price,omitempty"`
	// feed side timestamp of the reading
	Time    time.Time      `json:"time,omitempty"`
	Content types.JSONText `sql:"type:varchar(1024)" json:"content,omitempty"`
	Version int64          `sql:"default:0" json:"version,omitempty"`

	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at,omitempty"`
}

// Valid check the reading against the market staleness bound
func (p *Price) Valid(now time.Time, maxAge int64) bool {
	if !p.Price.IsPositive() {
		return false
	}

	return now.Sub(p.Time) <= time.Duration(maxAge)*time.Second
}

// PriceTicker price ticker pulled from the feed
type PriceTicker struct {
	Provider string          `json:"provider,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
	Time     time.Time       `json:"time,omitempty"`
}

// IPriceStore price store interface
type IPriceStore interface {
	Save(ctx context.Context, tx *db.DB, price *Price) error
	Find(ctx context.Context, assetID string) (*Price, error)
	All(ctx context.Context) ([]*Price, error)
}

// IPriceOracleService oracle gateway
//
// GetPrice is the checked read path: it fails with ErrStalePrice when the
// stored reading is older than the market staleness bound. GetPriceUnchecked
// skips the staleness check and must stay confined to read-only views; no
// state-mutating code path may call it.
type IPriceOracleService interface {
	GetPrice(ctx context.Context, market *Market, now time.Time) (*Price, error)
	GetPriceUnchecked(ctx context.Context, market *Market) (*Price, error)
	PullPriceTicker(ctx context.Context, symbol string, t time.Time) (*PriceTicker, error)
}
