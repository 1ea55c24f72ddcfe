// Package asset provides an in-memory balance ledger and the escrow adapter
// that lets an orderbook pull and pay funds against it. It is the reference
// settlement backend for tests and single-process deployments; production
// deployments implement the same transfer surface against their own store.
package asset

import (
	"errors"
	"sync"
)

// ErrInsufficientBalance is returned when a transfer exceeds the payer's balance.
var ErrInsufficientBalance = errors.New("insufficient balance")

// TransferHook observes every transfer before it is applied. Used by tests to
// interleave calls at the settlement boundary.
type TransferHook func(from, to string, amount uint64)

// Ledger tracks per-holder balances of one asset.
type Ledger struct {
	mu       sync.Mutex
	symbol   string
	balances map[string]uint64
	hook     TransferHook
}

// NewLedger creates an empty ledger for the given asset symbol.
func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:   symbol,
		balances: make(map[string]uint64),
	}
}

// Symbol returns the asset symbol.
func (l *Ledger) Symbol() string {
	return l.symbol
}

// Mint credits newly created units to a holder.
func (l *Ledger) Mint(holder string, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[holder] += amount
}

// Balance returns the holder's current balance.
func (l *Ledger) Balance(holder string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[holder]
}

// SetHook installs a transfer observer. The hook runs before the ledger lock
// is taken, so it may itself call back into the ledger.
func (l *Ledger) SetHook(hook TransferHook) {
	l.hook = hook
}

// Transfer moves amount from one holder to another. The whole amount moves or
// nothing does.
func (l *Ledger) Transfer(from, to string, amount uint64) error {
	if l.hook != nil {
		l.hook(from, to, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
