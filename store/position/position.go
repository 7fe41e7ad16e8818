package position

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) view(tx *db.DB) *gorm.DB {
	if tx != nil {
		return tx.Update()
	}

	return s.db.View()
}

func (s *positionStore) Create(ctx context.Context, tx *db.DB, position *core.Position) error {
	return tx.Update().Create(position).Error
}

// Find returns the position of the user in the asset; a fresh zero
// position with ID == 0 when none exists yet.
func (s *positionStore) Find(ctx context.Context, tx *db.DB, userID, assetID string) (*core.Position, error) {
	var position core.Position
	err := s.view(tx).Where("user_id=? and asset_id=?", userID, assetID).First(&position).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Position{
				UserID:      userID,
				AssetID:     assetID,
				SupplyIndex: decimal.New(1, 0),
				BorrowIndex: decimal.New(1, 0),
			}, nil
		}

		return nil, err
	}

	return &position, nil
}

func (s *positionStore) FindByUser(ctx context.Context, tx *db.DB, userID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.view(tx).Where("user_id=?", userID).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) FindByAsset(ctx context.Context, assetID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("asset_id=?", assetID).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) Users(ctx context.Context) ([]string, error) {
	var users []string
	if err := s.db.View().Model(core.Position{}).Pluck("distinct user_id", &users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (s *positionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	if position.ID == 0 {
		return s.Create(ctx, tx, position)
	}

	version := position.Version
	position.Version++
	// map updates: principals legitimately go back to zero, a struct
	// update would skip them
	if err := tx.Update().Model(core.Position{}).
		Where("id=? and version=?", position.ID, version).
		Updates(map[string]interface{}{
			"supply_principal":  position.SupplyPrincipal,
			"supply_index":      position.SupplyIndex,
			"borrow_principal":  position.BorrowPrincipal,
			"borrow_index":      position.BorrowIndex,
			"flash_outstanding": position.FlashOutstanding,
			"version":           position.Version,
		}).Error; err != nil {
		return err
	}

	return nil
}
