package engine

import (
	"context"

	"lever/core"
	"lever/pkg/id"
	"lever/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// FlashLoan lends amount of the asset to the borrower for the duration
// of one transaction.
//
// The liability is recorded on the initiating account before the funds
// move, so any operation the callback performs values the account with
// the loan on the debt side. Principal plus fee is pulled back from the
// account once the callback returns; a short account rolls the whole
// transaction back, callback effects included.
func (e *Engine) FlashLoan(ctx context.Context, userID, assetID string, amount decimal.Decimal, borrower core.FlashBorrower) error {
	return e.run(ctx, []string{userID}, func(ctx context.Context, s *session) error {
		return s.flashLoan(ctx, userID, assetID, amount, borrower)
	})
}

func (s *session) flashLoan(ctx context.Context, userID, assetID string, amount decimal.Decimal, borrower core.FlashBorrower) error {
	log := logger.FromContext(ctx).WithField("event", "flash_loan")

	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}

	market, err := s.market(ctx, assetID)
	if err != nil {
		return err
	}

	if market.IsClosed() {
		return core.ErrMarketClosed
	}

	if market.TotalCash.LessThan(amount) {
		return core.ErrInsufficientLiquidity
	}

	// fee owed to the protocol rounds up
	fee := number.Ceil(amount.Mul(s.eng.cfg.FlashFee), 8)

	position, err := s.eng.positionStore.Find(ctx, s.tx, userID, assetID)
	if err != nil {
		return err
	}

	// liability first, funds second; the callback can never observe the
	// loan without the matching debt
	position.FlashOutstanding = amount
	if err := s.eng.positionStore.Update(ctx, s.tx, position); err != nil {
		return err
	}

	market.TotalCash = market.TotalCash.Sub(amount)
	if err := s.eng.marketStore.Update(ctx, s.tx, market); err != nil {
		return err
	}

	if err := s.eng.vaultStore.Transfer(ctx, s.tx, core.VaultUserID, userID, assetID, amount); err != nil {
		return err
	}

	if err := borrower.OnFlashLoan(ctx, &operator{s: s}, assetID, amount, fee); err != nil {
		log.WithError(err).Infoln("flash loan callback failed")
		return err
	}

	// settle: pull principal plus fee back from the account wallet
	if err := s.eng.vaultStore.Transfer(ctx, s.tx, userID, core.VaultUserID, assetID, amount.Add(fee)); err != nil {
		if err == core.ErrInsufficientBalance {
			return core.ErrFlashLoanNotRepaid
		}
		return err
	}

	// the callback may have touched the same market, work off fresh rows
	market, err = s.market(ctx, assetID)
	if err != nil {
		return err
	}

	market.TotalCash = market.TotalCash.Add(amount).Add(fee)
	market.Reserves = market.Reserves.Add(fee)
	if err := s.eng.marketStore.Update(ctx, s.tx, market); err != nil {
		return err
	}

	position, err = s.eng.positionStore.Find(ctx, s.tx, userID, assetID)
	if err != nil {
		return err
	}

	position.FlashOutstanding = decimal.Zero
	if err := s.eng.positionStore.Update(ctx, s.tx, position); err != nil {
		return err
	}

	log.Infoln("flash loan", amount, market.Symbol, "fee", fee, "by", userID)

	event := &core.Event{
		TraceID: id.GenTraceID(),
		UserID:  userID,
		Action:  core.ActionFlashLoan,
		AssetID: assetID,
		Amount:  amount,
	}
	if err := event.SetData(map[string]decimal.Decimal{"fee": fee}); err != nil {
		return err
	}

	return s.emit(ctx, event)
}

// operator exposes the session's operations to a flash borrower without
// the ability to start another flash loan
type operator struct {
	s *session
}

func (o *operator) Deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return o.s.deposit(ctx, userID, assetID, amount)
}

func (o *operator) Withdraw(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return o.s.withdraw(ctx, userID, assetID, amount)
}

func (o *operator) Borrow(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return o.s.borrow(ctx, userID, assetID, amount)
}

func (o *operator) Repay(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	return o.s.repay(ctx, userID, assetID, amount)
}

func (o *operator) Transfer(ctx context.Context, from, to, assetID string, amount decimal.Decimal) error {
	amount, err := checkAmount(amount)
	if err != nil {
		return err
	}

	return o.s.eng.vaultStore.Transfer(ctx, o.s.tx, from, to, assetID, amount)
}

var _ core.Operator = (*operator)(nil)
