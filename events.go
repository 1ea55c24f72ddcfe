package book

import (
	"sync"
	"time"
)

type EventType string

const (
	EventPlaced      EventType = "placed"
	EventFilled      EventType = "filled"
	EventCanceled    EventType = "canceled"
	EventBookCreated EventType = "book_created"
)

// BookEvent is a record emitted by the engine for external indexers.
// SequenceID increases monotonically per book, used for ordering,
// deduplication and rebuild synchronization in downstream systems.
// Fill emits one filled event per price level touched.
type BookEvent struct {
	SequenceID   uint64    `json:"seq_id"`
	Type         EventType `json:"type"`
	BookID       string    `json:"book_id"`
	Side         Side      `json:"side,omitempty"`
	Price        uint64    `json:"price,omitempty"`
	Amount       uint64    `json:"amount,omitempty"`
	OrderID      uint64    `json:"order_id,omitempty"`
	Owner        uint32    `json:"owner,omitempty"`
	TradedAsset  string    `json:"traded_asset,omitempty"`
	BaseAsset    string    `json:"base_asset,omitempty"`
	ContractSize uint64    `json:"contract_size,omitempty"`
	PriceTick    uint64    `json:"price_tick,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

var bookEventPool = sync.Pool{
	New: func() any {
		return new(BookEvent)
	},
}

func acquireBookEvent() *BookEvent {
	return bookEventPool.Get().(*BookEvent)
}

func releaseBookEvent(ev *BookEvent) {
	*ev = BookEvent{}
	bookEventPool.Put(ev)
}

func newPlacedEvent(seqID uint64, bookID string, side Side, price, amount, orderID uint64, owner uint32) *BookEvent {
	ev := acquireBookEvent()
	ev.SequenceID = seqID
	ev.Type = EventPlaced
	ev.BookID = bookID
	ev.Side = side
	ev.Price = price
	ev.Amount = amount
	ev.OrderID = orderID
	ev.Owner = owner
	ev.CreatedAt = time.Now().UTC()
	return ev
}

func newFilledEvent(seqID uint64, bookID string, side Side, price, amount uint64) *BookEvent {
	ev := acquireBookEvent()
	ev.SequenceID = seqID
	ev.Type = EventFilled
	ev.BookID = bookID
	ev.Side = side
	ev.Price = price
	ev.Amount = amount
	ev.CreatedAt = time.Now().UTC()
	return ev
}

func newCanceledEvent(seqID uint64, bookID string, side Side, price, amount, orderID uint64) *BookEvent {
	ev := acquireBookEvent()
	ev.SequenceID = seqID
	ev.Type = EventCanceled
	ev.BookID = bookID
	ev.Side = side
	ev.Price = price
	ev.Amount = amount
	ev.OrderID = orderID
	ev.CreatedAt = time.Now().UTC()
	return ev
}

func newBookCreatedEvent(seqID uint64, bookID string, tradedAsset, baseAsset string, contractSize, priceTick uint64) *BookEvent {
	ev := acquireBookEvent()
	ev.SequenceID = seqID
	ev.Type = EventBookCreated
	ev.BookID = bookID
	ev.TradedAsset = tradedAsset
	ev.BaseAsset = baseAsset
	ev.ContractSize = contractSize
	ev.PriceTick = priceTick
	ev.CreatedAt = time.Now().UTC()
	return ev
}
