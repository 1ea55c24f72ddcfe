package book

import "errors"

// levelFill is one entry of a fill plan: the quantity taken at one price
// level, and whether taking it drained the level out of the price chain.
type levelFill struct {
	price   uint64
	taken   uint64
	drained bool
}

// Fill consumes resting liquidity on the given side in price-time priority.
// side denotes which resting orders are taken: filling Sell means the caller
// is buying from resting sell orders. Starting at the best price, up to
// maxLevels consecutive levels are matched while quantity remains and the
// level price satisfies limitPrice (price <= limitPrice when taking Sell,
// price >= limitPrice when taking Buy).
//
// The taker pays the proceeds leg (base for Sell fills, traded for Buy
// fills) and receives the escrow leg net of the taker fee. The book walk is
// planned read-only first, the taker's funds are pulled, and only then are
// level counters mutated, so a failed pull leaves no trace.
func (b *Orderbook) Fill(caller string, side Side, maxAmount, limitPrice uint64, maxLevels uint32) (FillResult, error) {
	if err := b.guard.enter(); err != nil {
		return FillResult{}, err
	}
	defer b.guard.leave()

	s := b.side(side)
	if s == nil {
		return FillResult{}, ErrInvalidSide
	}
	if maxAmount == 0 {
		return FillResult{}, ErrInvalidAmount
	}

	plan, filled, totalPrice, err := b.planFill(s, side, maxAmount, limitPrice, maxLevels)
	if err != nil {
		return FillResult{}, err
	}
	if filled == 0 {
		return FillResult{}, ErrNothingFilled
	}

	contracts, err := mulU64(filled, b.contractSize)
	if err != nil {
		return FillResult{}, err
	}
	var givenAmount, takenAmount uint64
	if side == Sell {
		givenAmount, takenAmount = contracts, totalPrice
	} else {
		givenAmount, takenAmount = totalPrice, contracts
	}
	fee := computeFee(givenAmount, b.takerFeeRate)

	// Pull the taker's funds before any book mutation.
	if err := b.proceedsAsset(side).TransferIn(caller, takenAmount); err != nil {
		return FillResult{}, err
	}

	events := make([]*BookEvent, 0, len(plan))
	for i := range plan {
		pp := s.point(plan[i].price)
		pp.totalFilled += plan[i].taken
		if pp.totalFilled == pp.totalPlaced {
			s.ladder.remove(plan[i].price)
			plan[i].drained = true
		}
		events = append(events, newFilledEvent(b.nextSeqID(), b.id, side, plan[i].price, plan[i].taken))
	}
	b.creditFee(b.escrowAsset(side), fee)

	if err := b.escrowAsset(side).TransferOut(caller, givenAmount-fee); err != nil {
		b.rollbackFill(s, side, plan, fee, events)
		if rerr := b.proceedsAsset(side).TransferOut(caller, takenAmount); rerr != nil {
			logger.Error("fill refund failed after payout failure",
				"book_id", b.id, "caller", caller, "amount", takenAmount, "error", rerr)
			err = errors.Join(err, rerr)
		}
		return FillResult{}, err
	}

	b.publish(events...)
	return FillResult{Filled: filled, TotalPrice: totalPrice, Fee: fee}, nil
}

// planFill walks the price chain read-only and computes the per-level taken
// quantities. A level with zero available liquidity should be unreachable
// from the chain; it is treated as queue exhaustion.
func (b *Orderbook) planFill(s *bookSide, side Side, maxAmount, limitPrice uint64, maxLevels uint32) ([]levelFill, uint64, uint64, error) {
	plan := make([]levelFill, 0, 4)
	var filled, totalPrice uint64
	remaining := maxAmount

	price := s.ladder.bestPrice()
	for levels := uint32(0); levels < maxLevels && remaining > 0 && price != 0; levels++ {
		if side == Sell && price > limitPrice || side == Buy && price < limitPrice {
			break
		}
		available := s.point(price).available()
		if available == 0 {
			break
		}

		taken := min(remaining, available)
		cost, err := mulU64(price, taken)
		if err != nil {
			return nil, 0, 0, err
		}
		if totalPrice, err = addU64(totalPrice, cost); err != nil {
			return nil, 0, 0, err
		}

		plan = append(plan, levelFill{price: price, taken: taken})
		filled += taken
		remaining -= taken
		price = s.ladder.nextPrice(price)
	}

	return plan, filled, totalPrice, nil
}

// rollbackFill undoes the applied plan after a failed payout: level counters
// shrink back, drained levels rejoin the chain and the fee credit is
// reversed. The recycled events are never published.
func (b *Orderbook) rollbackFill(s *bookSide, side Side, plan []levelFill, fee uint64, events []*BookEvent) {
	for i := range plan {
		pp := s.point(plan[i].price)
		pp.totalFilled -= plan[i].taken
		if plan[i].drained {
			s.ladder.insert(plan[i].price)
		}
	}
	b.debitFee(b.escrowAsset(side), fee)
	for _, ev := range events {
		releaseBookEvent(ev)
	}
}
