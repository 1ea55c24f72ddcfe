package book

import (
	"github.com/huandu/skiplist"
)

// depthLevel is the aggregated available liquidity at one price.
type depthLevel struct {
	price  uint64
	amount uint64
}

// sideDepth holds one side's price levels sorted in matching priority order,
// with a price index for O(1) level lookup.
type sideDepth struct {
	levels *skiplist.SkipList
	index  map[uint64]*skiplist.Element
}

func newSideDepth(side Side) *sideDepth {
	return &sideDepth{
		levels: skiplist.New(skiplist.GreaterThanFunc(func(lhs, rhs any) int {
			p1, _ := lhs.(uint64)
			p2, _ := rhs.(uint64)

			if p1 == p2 {
				return 0
			}
			if side == Sell {
				if p1 > p2 {
					return 1
				}
				return -1
			}
			if p1 < p2 {
				return 1
			}
			return -1
		})),
		index: make(map[uint64]*skiplist.Element),
	}
}

func (d *sideDepth) add(price, amount uint64) {
	if el, ok := d.index[price]; ok {
		level, _ := el.Value.(*depthLevel)
		level.amount += amount
		return
	}
	d.index[price] = d.levels.Set(price, &depthLevel{price: price, amount: amount})
}

func (d *sideDepth) sub(price, amount uint64) {
	el, ok := d.index[price]
	if !ok {
		return
	}
	level, _ := el.Value.(*depthLevel)
	if amount >= level.amount {
		d.levels.RemoveElement(el)
		delete(d.index, price)
		return
	}
	level.amount -= amount
}

func (d *sideDepth) best() uint64 {
	el := d.levels.Front()
	if el == nil {
		return 0
	}
	level, _ := el.Value.(*depthLevel)
	return level.price
}

func (d *sideDepth) depth(limit uint32) []DepthItem {
	result := make([]DepthItem, 0, limit)

	el := d.levels.Front()
	var i uint32
	for i < limit && el != nil {
		level, _ := el.Value.(*depthLevel)
		result = append(result, DepthItem{Price: level.price, Amount: level.amount})
		el = el.Next()
		i++
	}

	return result
}

// AggregatedBook maintains a simplified view of one orderbook, tracking only
// price levels and their available liquidity. It is designed for downstream
// services that rebuild book state from BookEvent records received via a
// message queue: placements add liquidity, fills and cancellations remove it,
// claims never touch it.
type AggregatedBook struct {
	seqID uint64
	ask   *sideDepth
	bid   *sideDepth
}

// NewAggregatedBook creates a new AggregatedBook with empty ask and bid sides.
func NewAggregatedBook() *AggregatedBook {
	return &AggregatedBook{
		ask: newSideDepth(Sell),
		bid: newSideDepth(Buy),
	}
}

// SequenceID returns the last applied sequence id, used for deduplication
// and gap detection during rebuild.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID
}

// Apply replays one book event onto the aggregated state. Events must arrive
// in ascending sequence order; a stale or duplicate event is rejected with
// ErrStaleEvent and leaves the state untouched.
func (ab *AggregatedBook) Apply(ev *BookEvent) error {
	if ev.SequenceID <= ab.seqID {
		return ErrStaleEvent
	}

	switch ev.Type {
	case EventPlaced:
		ab.sideDepth(ev.Side).add(ev.Price, ev.Amount)
	case EventFilled, EventCanceled:
		ab.sideDepth(ev.Side).sub(ev.Price, ev.Amount)
	case EventBookCreated:
		// No depth change.
	}

	ab.seqID = ev.SequenceID
	return nil
}

// Best returns the best price on one side, 0 when the side is empty.
func (ab *AggregatedBook) Best(side Side) uint64 {
	return ab.sideDepth(side).best()
}

// Depth returns up to limit levels of one side in matching priority order.
func (ab *AggregatedBook) Depth(side Side, limit uint32) []DepthItem {
	return ab.sideDepth(side).depth(limit)
}

func (ab *AggregatedBook) sideDepth(side Side) *sideDepth {
	if side == Sell {
		return ab.ask
	}
	return ab.bid
}
