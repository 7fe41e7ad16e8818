package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrOperationInFlight another operation of the account is in flight
	ErrOperationInFlight ErrorCode = 100002

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100100
	// ErrMarketClosed market closed
	ErrMarketClosed ErrorCode = 100101
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100102
	// ErrPositionNotFound no position
	ErrPositionNotFound ErrorCode = 100103
	// ErrInsufficientCollateral post-op health check failed
	ErrInsufficientCollateral ErrorCode = 100104
	// ErrInsufficientLiquidity market cash cannot cover the request
	ErrInsufficientLiquidity ErrorCode = 100105
	// ErrBorrowCapExceeded borrow cap exceeded
	ErrBorrowCapExceeded ErrorCode = 100106
	// ErrInsufficientBalance token balance too low
	ErrInsufficientBalance ErrorCode = 100107
	// ErrAmountOverflow amount beyond the storable column capacity
	ErrAmountOverflow ErrorCode = 100108

	// ErrStalePrice oracle reading older than the staleness bound
	ErrStalePrice ErrorCode = 100200
	// ErrPriceMovedTooMuch the two liquidation readings deviate too much
	ErrPriceMovedTooMuch ErrorCode = 100201

	// ErrPositionHealthy liquidation attempted on a healthy account
	ErrPositionHealthy ErrorCode = 100300

	// ErrFlashLoanNotRepaid vault short after the flash loan callback
	ErrFlashLoanNotRepaid ErrorCode = 100400

	// ErrReserveFactorTooHigh reserve factor above the hard ceiling
	ErrReserveFactorTooHigh ErrorCode = 100500
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
