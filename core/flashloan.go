package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Operator narrow operation surface handed to a flash borrower while its
// loan is outstanding. It deliberately has no way to start another flash
// loan, so the re-entrancy boundary is closed at the type level; every
// operation invoked through it observes the recorded liability.
type Operator interface {
	Deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	Borrow(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	Repay(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	// Transfer moves vault tokens between holders, used to return the loan
	Transfer(ctx context.Context, from, to, assetID string, amount decimal.Decimal) error
}

// FlashBorrower capability handed the borrowed funds
//
// OnFlashLoan runs with the liability already recorded on the initiating
// account. Returning an error, or leaving the vault short of amount plus
// fee, rolls the whole flash loan back.
type FlashBorrower interface {
	OnFlashLoan(ctx context.Context, op Operator, assetID string, amount, fee decimal.Decimal) error
}
