package book

import (
	"sync"

	"github.com/rs/xid"
)

// Exchange is the deployment collaborator: a registry of created orderbook
// instances, one per traded pair. It performs the one-time deployment
// validation, assigns instance ids and emits the book_created record.
// Trading itself goes through the Orderbook instances directly.
type Exchange struct {
	books     sync.Map
	publisher Publisher
}

// NewExchange creates an exchange publishing through the given publisher.
// A nil publisher discards all events.
func NewExchange(publisher Publisher) *Exchange {
	if publisher == nil {
		publisher = NewDiscardPublisher()
	}
	return &Exchange{
		publisher: publisher,
	}
}

// CreateOrderbook validates the deployment parameters, creates a new book
// with a fresh instance id and registers it.
func (e *Exchange) CreateOrderbook(cfg Config, opts ...Option) (*Orderbook, error) {
	id := xid.New().String()
	opts = append(opts, WithPublisher(e.publisher))

	b, err := NewOrderbook(id, cfg, opts...)
	if err != nil {
		return nil, err
	}
	e.books.Store(id, b)

	e.publish(newBookCreatedEvent(b.nextSeqID(), id,
		cfg.TradedAsset.Symbol(), cfg.BaseAsset.Symbol(), cfg.ContractSize, cfg.PriceTick))
	logger.Info("orderbook created",
		"book_id", id,
		"traded_asset", cfg.TradedAsset.Symbol(),
		"base_asset", cfg.BaseAsset.Symbol(),
		"contract_size", cfg.ContractSize,
		"price_tick", cfg.PriceTick)
	return b, nil
}

// Attach registers an externally constructed book, used on restart before
// RestoreFromSnapshot to re-bind books to their collaborators.
func (e *Exchange) Attach(b *Orderbook) {
	e.books.Store(b.ID(), b)
}

// Orderbook retrieves a book by instance id. Returns nil if it does not exist.
func (e *Exchange) Orderbook(id string) *Orderbook {
	b, found := e.books.Load(id)
	if !found {
		return nil
	}

	orderbook, _ := b.(*Orderbook)
	return orderbook
}

// Books returns all registered book instances.
func (e *Exchange) Books() []*Orderbook {
	books := make([]*Orderbook, 0)
	e.books.Range(func(_, value any) bool {
		books = append(books, value.(*Orderbook))
		return true
	})
	return books
}

func (e *Exchange) publish(events ...*BookEvent) {
	if len(events) == 0 {
		return
	}
	e.publisher.Publish(events...)
	for _, ev := range events {
		releaseBookEvent(ev)
	}
}
