package book

import "errors"

var (
	ErrInvalidSide    = errors.New("side must be buy or sell")
	ErrInvalidPrice   = errors.New("price must be a positive multiple of the price tick")
	ErrInvalidAmount  = errors.New("amount is zero or overflows the escrow computation")
	ErrInvalidOrderID = errors.New("order id was never allocated at this price level")
	ErrOrderDeleted   = errors.New("order has been fully claimed or canceled")

	ErrUnauthorized  = errors.New("caller is not authorized for this operation")
	ErrNotRegistered = errors.New("address is not registered in the address book")

	ErrNothingFilled   = errors.New("no resting order matched the fill")
	ErrNothingToClaim  = errors.New("order has no filled unclaimed quantity")
	ErrNothingToCancel = errors.New("order has no unfilled unclaimed quantity")

	ErrReentrantCall = errors.New("reentrant call rejected")

	ErrInvalidAddressBook  = errors.New("address book must not be nil")
	ErrInvalidTokenPair    = errors.New("traded and base assets must be distinct and non-nil")
	ErrInvalidContractSize = errors.New("contract size must be positive")
	ErrInvalidPriceTick    = errors.New("price tick must be positive")
	ErrInvalidTreasury     = errors.New("treasury address must not be empty")
	ErrInvalidFeeRate      = errors.New("fee rate must be in [0, 1)")

	ErrBookNotFound = errors.New("orderbook not found")
	ErrStaleEvent   = errors.New("event sequence id is not ahead of the book")
)
