package book

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// feeLedger accumulates fees withheld from taker payouts (fill) and maker
// payouts (claim), per asset. It is owned by the Orderbook and drained only
// by the treasury through ClaimFees.
type feeLedger struct {
	traded uint64
	base   uint64
}

// drain zeroes the ledger and returns the drained balances.
func (l *feeLedger) drain() (traded, base uint64) {
	traded, base = l.traded, l.base
	l.traded, l.base = 0, 0
	return traded, base
}

func validFeeRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThan(decimal.NewFromInt(1))
}

// computeFee returns amount*rate floored to whole asset units.
func computeFee(amount uint64, rate decimal.Decimal) uint64 {
	if amount == 0 || rate.IsZero() {
		return 0
	}
	fee := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0).Mul(rate).Floor()
	return fee.BigInt().Uint64()
}

func (b *Orderbook) creditFee(asset Asset, amount uint64) {
	if amount == 0 {
		return
	}
	if asset == b.tradedAsset {
		b.fees.traded += amount
	} else {
		b.fees.base += amount
	}
}

func (b *Orderbook) debitFee(asset Asset, amount uint64) {
	if amount == 0 {
		return
	}
	if asset == b.tradedAsset {
		b.fees.traded -= amount
	} else {
		b.fees.base -= amount
	}
}

// CollectedFees returns the fee balances awaiting the treasury.
func (b *Orderbook) CollectedFees() (traded, base uint64) {
	return b.fees.traded, b.fees.base
}
