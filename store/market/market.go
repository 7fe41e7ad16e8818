package market

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Market{})
		if err := tx.AutoMigrate(core.Market{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) view(tx *db.DB) *gorm.DB {
	if tx != nil {
		return tx.Update()
	}

	return s.db.View()
}

func (s *marketStore) Save(ctx context.Context, tx *db.DB, market *core.Market) error {
	return tx.Update().Create(market).Error
}

func (s *marketStore) Find(ctx context.Context, tx *db.DB, assetID string) (*core.Market, error) {
	var market core.Market
	if err := s.view(tx).Where("asset_id=?", assetID).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrMarketNotFound
		}

		return nil, err
	}

	return &market, nil
}

func (s *marketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("symbol=?", symbol).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrMarketNotFound
		}

		return nil, err
	}

	return &market, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := s.db.View().Find(&markets).Error; err != nil {
		return nil, err
	}

	return markets, nil
}

func (s *marketStore) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	markets, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	maps := make(map[string]*core.Market, len(markets))
	for _, m := range markets {
		maps[m.AssetID] = m
	}

	return maps, nil
}

func (s *marketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	version := market.Version
	market.Version++
	// map updates: totals legitimately go back to zero, a struct update
	// would skip them
	if err := tx.Update().Model(core.Market{}).
		Where("asset_id=? and version=?", market.AssetID, version).
		Updates(map[string]interface{}{
			"total_cash":            market.TotalCash,
			"total_borrows":         market.TotalBorrows,
			"reserves":              market.Reserves,
			"borrow_index":          market.BorrowIndex,
			"supply_index":          market.SupplyIndex,
			"last_accrued_at":       market.LastAccruedAt,
			"reserve_factor":        market.ReserveFactor,
			"borrow_cap":            market.BorrowCap,
			"collateral_factor":     market.CollateralFactor,
			"liquidation_incentive": market.LiquidationIncentive,
			"close_factor":          market.CloseFactor,
			"max_price_age":         market.MaxPriceAge,
			"base_rate":             market.BaseRate,
			"multiplier":            market.Multiplier,
			"jump_multiplier":       market.JumpMultiplier,
			"kink":                  market.Kink,
			"status":                market.Status,
			"version":               market.Version,
		}).Error; err != nil {
		return err
	}

	return nil
}
