package views

import (
	"lever/core"

	"github.com/shopspring/decimal"
)

// AccountPosition one leg of an account, balances valued at the current
// indices
type AccountPosition struct {
	AssetID       string          `json:"asset_id"`
	Symbol        string          `json:"symbol"`
	SupplyBalance decimal.Decimal `json:"supply_balance"`
	BorrowBalance decimal.Decimal `json:"borrow_balance"`
}

// Account account view
type Account struct {
	UserID          string             `json:"user_id"`
	CollateralValue decimal.Decimal    `json:"collateral_value"`
	DebtValue       decimal.Decimal    `json:"debt_value"`
	HealthFactor    decimal.Decimal    `json:"health_factor"`
	Healthy         bool               `json:"healthy"`
	Positions       []*AccountPosition `json:"positions"`
	Events          []*core.Event      `json:"events,omitempty"`
}
