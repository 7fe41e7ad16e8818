package views

import (
	"lever/core"

	"github.com/shopspring/decimal"
)

// Market market view
type Market struct {
	core.Market
	UtilizationRate decimal.Decimal `json:"utilization_rate"`
	SupplyAPY       decimal.Decimal `json:"supply_apy"`
	BorrowAPY       decimal.Decimal `json:"borrow_apy"`
	Liquidity       decimal.Decimal `json:"liquidity"`
	Price           decimal.Decimal `json:"price"`
}
