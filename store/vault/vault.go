package vault

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type vaultStore struct {
	db *db.DB
}

// New new vault store
func New(db *db.DB) core.IVaultStore {
	return &vaultStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Balance{})
		if err := tx.AutoMigrate(core.Balance{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *vaultStore) view(tx *db.DB) *gorm.DB {
	if tx != nil {
		return tx.Update()
	}

	return s.db.View()
}

func (s *vaultStore) find(tx *db.DB, userID, assetID string) (*core.Balance, error) {
	var balance core.Balance
	err := s.view(tx).Where("user_id=? and asset_id=?", userID, assetID).First(&balance).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Balance{UserID: userID, AssetID: assetID}, nil
		}

		return nil, err
	}

	return &balance, nil
}

func (s *vaultStore) save(tx *db.DB, balance *core.Balance) error {
	if balance.ID == 0 {
		return tx.Update().Create(balance).Error
	}

	version := balance.Version
	balance.Version++
	return tx.Update().Model(core.Balance{}).
		Where("id=? and version=?", balance.ID, version).
		Updates(map[string]interface{}{
			"amount":  balance.Amount,
			"version": balance.Version,
		}).Error
}

// Transfer atomic debit and credit inside tx
func (s *vaultStore) Transfer(ctx context.Context, tx *db.DB, from, to, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	payer, err := s.find(tx, from, assetID)
	if err != nil {
		return err
	}

	if payer.Amount.LessThan(amount) {
		return core.ErrInsufficientBalance
	}

	payee, err := s.find(tx, to, assetID)
	if err != nil {
		return err
	}

	payer.Amount = payer.Amount.Sub(amount)
	payee.Amount = payee.Amount.Add(amount)

	if err := s.save(tx, payer); err != nil {
		return err
	}

	return s.save(tx, payee)
}

// Credit mints amount onto the holder, used by faucet style admin tooling
func (s *vaultStore) Credit(ctx context.Context, tx *db.DB, userID, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	balance, err := s.find(tx, userID, assetID)
	if err != nil {
		return err
	}

	balance.Amount = balance.Amount.Add(amount)
	return s.save(tx, balance)
}

func (s *vaultStore) Balance(ctx context.Context, tx *db.DB, userID, assetID string) (decimal.Decimal, error) {
	balance, err := s.find(tx, userID, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return balance.Amount, nil
}

func (s *vaultStore) FindByUser(ctx context.Context, userID string) ([]*core.Balance, error) {
	var balances []*core.Balance
	if err := s.db.View().Where("user_id=?", userID).Find(&balances).Error; err != nil {
		return nil, err
	}

	return balances, nil
}
