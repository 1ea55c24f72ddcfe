package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMintAndTransfer(t *testing.T) {
	l := NewLedger("BTC")
	assert.Equal(t, "BTC", l.Symbol())

	l.Mint("alice", 100)
	assert.Equal(t, uint64(100), l.Balance("alice"))
	assert.Equal(t, uint64(0), l.Balance("bob"))

	require.NoError(t, l.Transfer("alice", "bob", 30))
	assert.Equal(t, uint64(70), l.Balance("alice"))
	assert.Equal(t, uint64(30), l.Balance("bob"))
}

func TestLedgerInsufficientBalance(t *testing.T) {
	l := NewLedger("BTC")
	l.Mint("alice", 10)

	err := l.Transfer("alice", "bob", 11)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// nothing moved
	assert.Equal(t, uint64(10), l.Balance("alice"))
	assert.Equal(t, uint64(0), l.Balance("bob"))
}

func TestLedgerHookObservesTransfers(t *testing.T) {
	l := NewLedger("BTC")
	l.Mint("alice", 100)

	var gotFrom, gotTo string
	var gotAmount uint64
	l.SetHook(func(from, to string, amount uint64) {
		gotFrom, gotTo, gotAmount = from, to, amount
	})

	require.NoError(t, l.Transfer("alice", "bob", 5))
	assert.Equal(t, "alice", gotFrom)
	assert.Equal(t, "bob", gotTo)
	assert.Equal(t, uint64(5), gotAmount)
}

func TestEscrowMovesFundsThroughAccount(t *testing.T) {
	l := NewLedger("USD")
	l.Mint("alice", 100)

	e := NewEscrow(l, "book")
	assert.Equal(t, "USD", e.Symbol())

	require.NoError(t, e.TransferIn("alice", 40))
	assert.Equal(t, uint64(60), e.BalanceOf("alice"))
	assert.Equal(t, uint64(40), l.Balance("book"))

	require.NoError(t, e.TransferOut("bob", 25))
	assert.Equal(t, uint64(25), e.BalanceOf("bob"))
	assert.Equal(t, uint64(15), l.Balance("book"))

	assert.ErrorIs(t, e.TransferOut("bob", 16), ErrInsufficientBalance)
}
