package book

import (
	"math/bits"

	"github.com/shopspring/decimal"
)

// Config carries the immutable deployment parameters of one orderbook.
type Config struct {
	TradedAsset  Asset
	BaseAsset    Asset
	ContractSize uint64 // traded-asset units represented by one unit of order amount
	PriceTick    uint64 // minimum price increment; all prices are exact multiples
	AddressBook  AddressBook
	Treasury     string // the only identity allowed to drain collected fees
}

// Option configures optional orderbook behavior.
type Option func(*Orderbook)

// WithTakerFeeRate sets the fee rate charged on the taker payout during Fill.
func WithTakerFeeRate(rate decimal.Decimal) Option {
	return func(b *Orderbook) {
		b.takerFeeRate = rate
	}
}

// WithMakerFeeRate sets the fee rate charged on the maker payout during ClaimOrder.
func WithMakerFeeRate(rate decimal.Decimal) Option {
	return func(b *Orderbook) {
		b.makerFeeRate = rate
	}
}

// WithPublisher sets the event publisher. Defaults to DiscardPublisher.
func WithPublisher(p Publisher) Option {
	return func(b *Orderbook) {
		if p != nil {
			b.publisher = p
		}
	}
}

// Orderbook is a two-sided claim-settled limit order book. Makers escrow the
// taken asset when placing, takers consume resting liquidity through Fill,
// and makers claim their proceeds later by order id.
//
// Every public operation runs to completion before the next begins; the book
// is transactional and strictly serialized per call and is NOT safe for
// concurrent use from multiple goroutines. The only tolerated hazard is a
// reentrant call from inside an asset transfer, which the guard rejects.
type Orderbook struct {
	id           string
	tradedAsset  Asset
	baseAsset    Asset
	contractSize uint64
	priceTick    uint64
	addressBook  AddressBook
	treasury     string
	takerFeeRate decimal.Decimal
	makerFeeRate decimal.Decimal

	seqID     uint64
	guard     reentryGuard
	fees      feeLedger
	sells     *bookSide
	buys      *bookSide
	publisher Publisher
}

// NewOrderbook creates an orderbook instance. Deployment parameters are
// validated once here and are immutable afterward.
func NewOrderbook(id string, cfg Config, opts ...Option) (*Orderbook, error) {
	if cfg.AddressBook == nil {
		return nil, ErrInvalidAddressBook
	}
	if cfg.TradedAsset == nil || cfg.BaseAsset == nil || cfg.TradedAsset.Symbol() == cfg.BaseAsset.Symbol() {
		return nil, ErrInvalidTokenPair
	}
	if cfg.ContractSize == 0 {
		return nil, ErrInvalidContractSize
	}
	if cfg.PriceTick == 0 {
		return nil, ErrInvalidPriceTick
	}
	if cfg.Treasury == "" {
		return nil, ErrInvalidTreasury
	}

	b := &Orderbook{
		id:           id,
		tradedAsset:  cfg.TradedAsset,
		baseAsset:    cfg.BaseAsset,
		contractSize: cfg.ContractSize,
		priceTick:    cfg.PriceTick,
		addressBook:  cfg.AddressBook,
		treasury:     cfg.Treasury,
		sells:        newBookSide(Sell),
		buys:         newBookSide(Buy),
		publisher:    NewDiscardPublisher(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if !validFeeRate(b.takerFeeRate) || !validFeeRate(b.makerFeeRate) {
		return nil, ErrInvalidFeeRate
	}

	return b, nil
}

// ID returns the instance id assigned at creation.
func (b *Orderbook) ID() string {
	return b.id
}

// ContractSize returns the traded-asset units per unit of order amount.
func (b *Orderbook) ContractSize() uint64 {
	return b.contractSize
}

// PriceTick returns the minimum price increment.
func (b *Orderbook) PriceTick() uint64 {
	return b.priceTick
}

// AskPrice returns the best sell price, 0 if there is no sell liquidity.
func (b *Orderbook) AskPrice() uint64 {
	return b.sells.ladder.bestPrice()
}

// BidPrice returns the best buy price, 0 if there is no buy liquidity.
func (b *Orderbook) BidPrice() uint64 {
	return b.buys.ladder.bestPrice()
}

// BestPrice returns the head of one side's price chain.
func (b *Orderbook) BestPrice(side Side) uint64 {
	if side == Sell {
		return b.AskPrice()
	}
	return b.BidPrice()
}

// NextPrice returns the successor of price in matching priority order,
// 0 if price is the last active level or not active at all.
func (b *Orderbook) NextPrice(side Side, price uint64) uint64 {
	s := b.side(side)
	if s == nil {
		return 0
	}
	return s.ladder.nextPrice(price)
}

// Order returns a copy of the order record, false if the id was never
// allocated at this level or the order has been tombstoned.
func (b *Orderbook) Order(side Side, price, orderID uint64) (Order, bool) {
	s := b.side(side)
	if s == nil {
		return Order{}, false
	}
	pp := s.point(price)
	if pp == nil {
		return Order{}, false
	}
	o := pp.order(orderID)
	if o == nil {
		return Order{}, false
	}
	return Order{
		Owner:        o.owner,
		Amount:       o.amount,
		Claimed:      o.claimed,
		PlacedBefore: o.placedBefore,
		Prev:         o.prev,
		Next:         o.next,
	}, true
}

// PricePoint returns a copy of the aggregate state of one price level.
// A level that never saw an order reads as the zero value.
func (b *Orderbook) PricePoint(side Side, price uint64) PricePoint {
	s := b.side(side)
	if s == nil {
		return PricePoint{}
	}
	pp := s.point(price)
	if pp == nil {
		return PricePoint{}
	}
	return PricePoint{
		LastOrderID:       pp.lastID,
		LastActualOrderID: pp.lastActual,
		TotalPlaced:       pp.totalPlaced,
		TotalFilled:       pp.totalFilled,
	}
}

// PlaceOrder escrows the taken asset and appends a resting order at
// (side, price). A sell order escrows amount*contractSize of the traded
// asset, a buy order escrows amount*price of the base asset. Returns the new
// order id, valid forever for claim, cancel and ownership transfer.
func (b *Orderbook) PlaceOrder(caller string, side Side, price, amount uint64) (uint64, error) {
	if err := b.guard.enter(); err != nil {
		return 0, err
	}
	defer b.guard.leave()

	s := b.side(side)
	if s == nil {
		return 0, ErrInvalidSide
	}
	if price == 0 || price%b.priceTick != 0 {
		return 0, ErrInvalidPrice
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	owner, err := b.addressBook.Resolve(caller)
	if err != nil {
		return 0, err
	}

	escrow, err := b.escrowAmount(side, price, amount)
	if err != nil {
		return 0, err
	}
	if err := b.escrowAsset(side).TransferIn(caller, escrow); err != nil {
		return 0, err
	}

	pp := s.pointOrNew(price)
	id := pp.append(owner, amount)
	if !s.ladder.contains(price) {
		s.ladder.insert(price)
	}

	b.publish(newPlacedEvent(b.nextSeqID(), b.id, side, price, amount, id, owner))
	return id, nil
}

// TransferOrder reassigns a resting order to a new owner. The target must be
// registered in the address book. No value moves.
func (b *Orderbook) TransferOrder(caller string, side Side, price, orderID uint64, newOwner string) error {
	if err := b.guard.enter(); err != nil {
		return err
	}
	defer b.guard.leave()

	s := b.side(side)
	if s == nil {
		return ErrInvalidSide
	}
	if price == 0 || price%b.priceTick != 0 {
		return ErrInvalidPrice
	}

	_, o, err := b.findOwnedOrder(s, caller, price, orderID)
	if err != nil {
		return err
	}

	target, err := b.addressBook.Resolve(newOwner)
	if err != nil {
		return err
	}
	o.owner = target
	return nil
}

func (b *Orderbook) side(s Side) *bookSide {
	switch s {
	case Sell:
		return b.sells
	case Buy:
		return b.buys
	}
	return nil
}

// escrowAsset returns the asset a maker on the given side deposits
// (and is refunded in on cancellation).
func (b *Orderbook) escrowAsset(side Side) Asset {
	if side == Sell {
		return b.tradedAsset
	}
	return b.baseAsset
}

// proceedsAsset returns the asset paid out for filled orders on the given
// side: the opposite leg of the escrow.
func (b *Orderbook) proceedsAsset(side Side) Asset {
	if side == Sell {
		return b.baseAsset
	}
	return b.tradedAsset
}

// escrowAmount returns the asset units a placement of (side, price, amount)
// must deposit.
func (b *Orderbook) escrowAmount(side Side, price, amount uint64) (uint64, error) {
	if side == Sell {
		return mulU64(amount, b.contractSize)
	}
	return mulU64(amount, price)
}

// findOrder locates an order, distinguishing ids that were never allocated
// from ids whose record has been tombstoned.
func (b *Orderbook) findOrder(s *bookSide, price, orderID uint64) (*pricePoint, *order, error) {
	pp := s.point(price)
	if pp == nil || orderID == 0 || orderID > pp.lastID {
		return nil, nil, ErrInvalidOrderID
	}
	o := pp.order(orderID)
	if o == nil {
		return nil, nil, ErrOrderDeleted
	}
	return pp, o, nil
}

// findOwnedOrder locates an order and verifies the caller owns it.
func (b *Orderbook) findOwnedOrder(s *bookSide, caller string, price, orderID uint64) (*pricePoint, *order, error) {
	owner, err := b.addressBook.Resolve(caller)
	if err != nil {
		return nil, nil, err
	}
	pp, o, err := b.findOrder(s, price, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.owner != owner {
		return nil, nil, ErrUnauthorized
	}
	return pp, o, nil
}

func (b *Orderbook) nextSeqID() uint64 {
	b.seqID++
	return b.seqID
}

// publish hands events to the publisher and recycles them to the pool.
func (b *Orderbook) publish(events ...*BookEvent) {
	if len(events) == 0 {
		return
	}
	b.publisher.Publish(events...)
	for _, ev := range events {
		releaseBookEvent(ev)
	}
}

func mulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrInvalidAmount
	}
	return lo, nil
}

func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrInvalidAmount
	}
	return sum, nil
}
