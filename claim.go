package book

// filledQuantity returns how much of the order has been matched, derived
// from the level's cumulative fill and the order's position in the queue,
// clamped to [0, order.amount].
func filledQuantity(pp *pricePoint, o *order) uint64 {
	if pp.totalFilled <= o.placedBefore {
		return 0
	}
	filled := pp.totalFilled - o.placedBefore
	if filled > o.amount {
		return o.amount
	}
	return filled
}

// ClaimOrder pays out the filled, not yet claimed quantity of a resting
// order, up to maxAmount. Proceeds are the opposite leg of the escrow: a
// sell order claims amountClaimed*price of the base asset, a buy order
// claims amountClaimed*contractSize of the traded asset, both net of the
// maker fee. A fully filled, fully claimed order is tombstoned.
func (b *Orderbook) ClaimOrder(caller string, side Side, price, orderID, maxAmount uint64) (claimed, fee uint64, err error) {
	if err := b.guard.enter(); err != nil {
		return 0, 0, err
	}
	defer b.guard.leave()

	s := b.side(side)
	if s == nil {
		return 0, 0, ErrInvalidSide
	}

	pp, o, err := b.findOwnedOrder(s, caller, price, orderID)
	if err != nil {
		return 0, 0, err
	}

	filled := filledQuantity(pp, o)
	var claimable uint64
	if filled > o.claimed {
		claimable = filled - o.claimed
	}
	amountClaimed := min(maxAmount, claimable)
	if amountClaimed == 0 {
		return 0, 0, ErrNothingToClaim
	}

	var proceeds uint64
	if side == Sell {
		proceeds, err = mulU64(amountClaimed, price)
	} else {
		proceeds, err = mulU64(amountClaimed, b.contractSize)
	}
	if err != nil {
		return 0, 0, err
	}
	fee = computeFee(proceeds, b.makerFeeRate)

	o.claimed += amountClaimed
	b.creditFee(b.proceedsAsset(side), fee)

	if err := b.proceedsAsset(side).TransferOut(caller, proceeds-fee); err != nil {
		o.claimed -= amountClaimed
		b.debitFee(b.proceedsAsset(side), fee)
		return 0, 0, err
	}

	if o.claimed == o.amount && filled == o.amount {
		pp.deleteOrder(orderID)
	}
	return amountClaimed, fee, nil
}

// CancelOrder refunds the unfilled, unclaimed remainder of a resting order,
// up to maxAmount. No fee is charged. Placed volume at the level shrinks, so
// every later live order's queue position shifts down by the canceled
// amount. A fully consumed order is tombstoned, and a level left with no
// available liquidity leaves the price chain.
func (b *Orderbook) CancelOrder(caller string, side Side, price, orderID, maxAmount uint64) (uint64, error) {
	if err := b.guard.enter(); err != nil {
		return 0, err
	}
	defer b.guard.leave()

	s := b.side(side)
	if s == nil {
		return 0, ErrInvalidSide
	}

	pp, o, err := b.findOwnedOrder(s, caller, price, orderID)
	if err != nil {
		return 0, err
	}

	consumed := max(o.claimed, filledQuantity(pp, o))
	cancelable := o.amount - consumed
	amountCanceled := min(maxAmount, cancelable)
	if amountCanceled == 0 {
		return 0, ErrNothingToCancel
	}

	var refund uint64
	if side == Sell {
		refund, err = mulU64(amountCanceled, b.contractSize)
	} else {
		refund, err = mulU64(amountCanceled, price)
	}
	if err != nil {
		return 0, err
	}

	pp.totalPlaced -= amountCanceled
	o.amount -= amountCanceled
	pp.shiftPlacedBefore(orderID, int64(amountCanceled))

	if err := b.escrowAsset(side).TransferOut(caller, refund); err != nil {
		pp.shiftPlacedBefore(orderID, -int64(amountCanceled))
		o.amount += amountCanceled
		pp.totalPlaced += amountCanceled
		return 0, err
	}

	if o.amount == o.claimed {
		pp.deleteOrder(orderID)
	}
	if pp.totalPlaced == pp.totalFilled {
		// Zero available liquidity: any surviving live order is fully
		// filled and only awaits claims, so the level leaves the chain.
		s.ladder.remove(price)
	}

	b.publish(newCanceledEvent(b.nextSeqID(), b.id, side, price, amountCanceled, orderID))
	return amountCanceled, nil
}

// ClaimFees transfers the entire fee ledger to the treasury and zeroes it.
// Only the treasury identity configured at creation may call it. If the base
// payout fails after the traded payout succeeded, the base balance is
// restored and remains claimable.
func (b *Orderbook) ClaimFees(caller string) (traded, base uint64, err error) {
	if err := b.guard.enter(); err != nil {
		return 0, 0, err
	}
	defer b.guard.leave()

	if caller != b.treasury {
		return 0, 0, ErrUnauthorized
	}

	traded, base = b.fees.drain()
	if traded > 0 {
		if err := b.tradedAsset.TransferOut(caller, traded); err != nil {
			b.fees.traded += traded
			b.fees.base += base
			return 0, 0, err
		}
	}
	if base > 0 {
		if err := b.baseAsset.TransferOut(caller, base); err != nil {
			b.fees.base += base
			return traded, 0, err
		}
	}
	return traded, base, nil
}
