package lever

import (
	"testing"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBorrowBalance(t *testing.T) {
	market := &core.Market{BorrowIndex: number.Decimal("1.05")}

	t.Run("index ratio", func(t *testing.T) {
		p := &core.Position{
			BorrowPrincipal: number.Decimal("100"),
			BorrowIndex:     decimal.New(1, 0),
		}

		assert.Equal(t, "105", BorrowBalance(p, market).String())
	})

	t.Run("rounds up", func(t *testing.T) {
		p := &core.Position{
			BorrowPrincipal: number.Decimal("1"),
			BorrowIndex:     number.Decimal("3"),
		}
		m := &core.Market{BorrowIndex: number.Decimal("4")}

		// 4/3 is periodic; the truncated value understates the debt
		got := BorrowBalance(p, m)
		assert.True(t, got.Mul(number.Decimal("3")).GreaterThanOrEqual(number.Decimal("4")),
			"debt must never round in the borrower's favor")
	})

	t.Run("zero principal", func(t *testing.T) {
		p := &core.Position{BorrowPrincipal: decimal.Zero}
		assert.True(t, BorrowBalance(p, market).IsZero())
	})
}

func TestSupplyBalance(t *testing.T) {
	t.Run("index ratio", func(t *testing.T) {
		p := &core.Position{
			SupplyPrincipal: number.Decimal("100"),
			SupplyIndex:     decimal.New(1, 0),
		}
		m := &core.Market{SupplyIndex: number.Decimal("1.02")}

		assert.Equal(t, "102", SupplyBalance(p, m).String())
	})

	t.Run("rounds down", func(t *testing.T) {
		p := &core.Position{
			SupplyPrincipal: number.Decimal("1"),
			SupplyIndex:     number.Decimal("3"),
		}
		m := &core.Market{SupplyIndex: number.Decimal("4")}

		got := SupplyBalance(p, m)
		assert.True(t, got.Mul(number.Decimal("3")).LessThanOrEqual(number.Decimal("4")),
			"credit to the user must never round up")
	})
}
