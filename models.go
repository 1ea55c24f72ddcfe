package book

type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return "unknown"
}

// Asset is the external value-transfer collaborator for one leg of the traded
// pair. TransferIn pulls funds from the payer into the book's escrow,
// TransferOut pays funds out of the escrow. Implementations may fail with
// their own errors (e.g. insufficient balance), which the engine propagates
// unmodified.
type Asset interface {
	Symbol() string
	TransferIn(payer string, amount uint64) error
	TransferOut(payee string, amount uint64) error
	BalanceOf(holder string) uint64
}

// AddressBook maps long caller identities to compact numeric ids.
// Id 0 is reserved for "absent".
type AddressBook interface {
	Resolve(address string) (uint32, error)
}

// Order is the externally visible state of a resting order. A zero Order is
// the tombstone sentinel: once an order is fully claimed or canceled its
// record is zeroed in place and the id is never reused.
type Order struct {
	Owner        uint32 `json:"owner"`
	Amount       uint64 `json:"amount"`
	Claimed      uint64 `json:"claimed"`
	PlacedBefore uint64 `json:"placed_before"` // quantity placed at this price strictly before this order
	Prev         uint64 `json:"prev"`
	Next         uint64 `json:"next"`
}

// PricePoint is the externally visible aggregate state of one price level.
type PricePoint struct {
	LastOrderID       uint64 `json:"last_order_id"`        // monotonic, never reused
	LastActualOrderID uint64 `json:"last_actual_order_id"` // tail of the live order list, 0 when empty
	TotalPlaced       uint64 `json:"total_placed"`
	TotalFilled       uint64 `json:"total_filled"`
}

// FillResult reports the aggregate outcome of a Fill call.
type FillResult struct {
	Filled     uint64 // total order quantity matched across all levels
	TotalPrice uint64 // sum of price*quantity over the matched levels
	Fee        uint64 // taker fee withheld from the payout
}

// DepthItem is one price level in an aggregated depth view.
type DepthItem struct {
	Price  uint64 `json:"price"`
	Amount uint64 `json:"amount"`
}
