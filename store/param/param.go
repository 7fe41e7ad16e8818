package param

import (
	"context"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type paramStore struct {
	db *db.DB
}

// New new param change store
func New(db *db.DB) core.IParamStore {
	return &paramStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.ParamChange{})
		if err := tx.AutoMigrate(core.ParamChange{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *paramStore) view(tx *db.DB) *gorm.DB {
	if tx != nil {
		return tx.Update()
	}

	return s.db.View()
}

func (s *paramStore) Create(ctx context.Context, tx *db.DB, change *core.ParamChange) error {
	return tx.Update().Create(change).Error
}

func (s *paramStore) ListDue(ctx context.Context, tx *db.DB, assetID string, now time.Time) ([]*core.ParamChange, error) {
	var changes []*core.ParamChange
	if err := s.view(tx).
		Where("asset_id=? and applied_at is null and effective_at <= ?", assetID, now).
		Order("id").
		Find(&changes).Error; err != nil {
		return nil, err
	}

	return changes, nil
}

func (s *paramStore) ListPending(ctx context.Context, assetID string) ([]*core.ParamChange, error) {
	var changes []*core.ParamChange
	if err := s.db.View().
		Where("asset_id=? and applied_at is null", assetID).
		Order("id").
		Find(&changes).Error; err != nil {
		return nil, err
	}

	return changes, nil
}

func (s *paramStore) MarkApplied(ctx context.Context, tx *db.DB, change *core.ParamChange, at time.Time) error {
	return tx.Update().Model(core.ParamChange{}).
		Where("id=?", change.ID).
		Update("applied_at", at).Error
}
