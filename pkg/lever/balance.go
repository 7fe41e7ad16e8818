package lever

import (
	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// BorrowBalance current borrow balance of a position
//
// balance = borrow_principal * market.borrow_index / position.borrow_index.
// Debt owed to the protocol rounds up; uncontrolled truncation in the
// borrower's favor is a slow insolvency leak at scale.
func BorrowBalance(p *core.Position, market *core.Market) decimal.Decimal {
	if !p.BorrowPrincipal.IsPositive() {
		return decimal.Zero
	}

	index := p.BorrowIndex
	if !index.IsPositive() {
		index = market.BorrowIndex
	}

	return number.Ceil(p.BorrowPrincipal.Mul(market.BorrowIndex).Div(index), MaxPrecision)
}

// SupplyBalance current supply balance of a position
//
// Credit owed to the user rounds down.
func SupplyBalance(p *core.Position, market *core.Market) decimal.Decimal {
	if !p.SupplyPrincipal.IsPositive() {
		return decimal.Zero
	}

	index := p.SupplyIndex
	if !index.IsPositive() {
		index = market.SupplyIndex
	}

	return number.Floor(p.SupplyPrincipal.Mul(market.SupplyIndex).Div(index), MaxPrecision)
}
