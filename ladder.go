package book

// priceLadder maintains, for one side, the sorted singly-linked chain of
// active prices and the current best price. Sell prices ascend (lowest ask
// first), buy prices descend (highest bid first). Insertion scans linearly
// from the best price; active levels are sparse so the scan stays short.
type priceLadder struct {
	side Side
	best uint64
	next map[uint64]uint64 // linked price -> successor, 0 = tail
}

func newPriceLadder(side Side) *priceLadder {
	return &priceLadder{
		side: side,
		next: make(map[uint64]uint64),
	}
}

// precedes reports whether price a matches before price b on this side.
func (l *priceLadder) precedes(a, b uint64) bool {
	if l.side == Sell {
		return a < b
	}
	return a > b
}

func (l *priceLadder) contains(price uint64) bool {
	_, ok := l.next[price]
	return ok
}

func (l *priceLadder) bestPrice() uint64 {
	return l.best
}

// nextPrice returns the successor of price in matching priority order,
// 0 if price is the tail or not linked.
func (l *priceLadder) nextPrice(price uint64) uint64 {
	return l.next[price]
}

// insert links a price into the chain at its sorted position.
// Inserting a price that is already linked is a no-op.
func (l *priceLadder) insert(price uint64) {
	if price == 0 || l.contains(price) {
		return
	}

	if l.best == 0 || l.precedes(price, l.best) {
		l.next[price] = l.best
		l.best = price
		return
	}

	cur := l.best
	for l.next[cur] != 0 && l.precedes(l.next[cur], price) {
		cur = l.next[cur]
	}
	l.next[price] = l.next[cur]
	l.next[cur] = price
}

// remove unlinks a price, relinking its predecessor to its successor.
// Removing a price that is not linked is a no-op.
func (l *priceLadder) remove(price uint64) {
	if !l.contains(price) {
		return
	}

	if l.best == price {
		l.best = l.next[price]
		delete(l.next, price)
		return
	}

	cur := l.best
	for l.next[cur] != price {
		cur = l.next[cur]
		if cur == 0 {
			return
		}
	}
	l.next[cur] = l.next[price]
	delete(l.next, price)
}
