package book

// order is the arena record of a resting order. Links are order ids rather
// than pointers so ids stay stable forever: claim, cancel and ownership
// transfer all reference orders by id long after they were placed.
type order struct {
	owner        uint32
	amount       uint64
	claimed      uint64
	placedBefore uint64 // cumulative quantity placed at this price strictly before this order
	prev         uint64
	next         uint64
}

// pricePoint is the order queue of one (side, price) level: a FIFO of live
// orders plus the aggregate counters the fill and claim math runs on.
// Deleted orders are tombstoned (removed from the arena, id never reused);
// lastID keeps growing while lastActual tracks the live tail.
type pricePoint struct {
	price       uint64
	lastID      uint64
	lastActual  uint64
	totalPlaced uint64
	totalFilled uint64
	orders      map[uint64]*order
}

func newPricePoint(price uint64) *pricePoint {
	return &pricePoint{
		price:  price,
		orders: make(map[uint64]*order),
	}
}

// available returns the unmatched liquidity at this level.
func (p *pricePoint) available() uint64 {
	return p.totalPlaced - p.totalFilled
}

func (p *pricePoint) hasLiveOrders() bool {
	return p.lastActual != 0
}

// order returns the arena record for id, nil if tombstoned or never allocated.
func (p *pricePoint) order(id uint64) *order {
	return p.orders[id]
}

// append allocates the next order id, links the order at the live tail and
// grows totalPlaced. The new order's placedBefore snapshot is what positions
// it in the fill queue.
func (p *pricePoint) append(owner uint32, amount uint64) uint64 {
	id := p.lastID + 1
	o := &order{
		owner:        owner,
		amount:       amount,
		placedBefore: p.totalPlaced,
		prev:         p.lastActual,
	}
	if p.lastActual != 0 {
		p.orders[p.lastActual].next = id
	}
	p.orders[id] = o
	p.lastID = id
	p.lastActual = id
	p.totalPlaced += amount
	return id
}

// deleteOrder tombstones an order, relinking its live neighbors. Zero
// endpoints mean list head/tail. If the order was the live tail, lastActual
// falls back to its predecessor.
func (p *pricePoint) deleteOrder(id uint64) {
	o := p.orders[id]
	if o == nil {
		return
	}
	if o.prev != 0 {
		p.orders[o.prev].next = o.next
	}
	if o.next != 0 {
		p.orders[o.next].prev = o.prev
	}
	if p.lastActual == id {
		p.lastActual = o.prev
	}
	delete(p.orders, id)
}

// shiftPlacedBefore walks the live orders allocated after fromID and adjusts
// their placedBefore by -delta. Required after a cancellation shrinks placed
// volume upstream of them; cost is proportional to the queue length after the
// canceled order, the accepted trade-off for O(1) append and fill.
func (p *pricePoint) shiftPlacedBefore(fromID uint64, delta int64) {
	for id := fromID + 1; id <= p.lastID; id++ {
		if o := p.orders[id]; o != nil {
			o.placedBefore = uint64(int64(o.placedBefore) - delta)
		}
	}
}

// bookSide pairs one side's price chain with its price-point arena. Price
// points outlive their chain membership: a fully matched level leaves the
// ladder but keeps its state until every maker has claimed.
type bookSide struct {
	ladder *priceLadder
	points map[uint64]*pricePoint
}

func newBookSide(side Side) *bookSide {
	return &bookSide{
		ladder: newPriceLadder(side),
		points: make(map[uint64]*pricePoint),
	}
}

func (s *bookSide) point(price uint64) *pricePoint {
	return s.points[price]
}

func (s *bookSide) pointOrNew(price uint64) *pricePoint {
	p, ok := s.points[price]
	if !ok {
		p = newPricePoint(price)
		s.points[price] = p
	}
	return p
}
