package book

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderbookSnapshotRoundTrip(t *testing.T) {
	env := newTestBook(t)

	id1, err := env.book.PlaceOrder("alice", Sell, 100, 5)
	require.NoError(t, err)
	_, err = env.book.PlaceOrder("carol", Sell, 200, 3)
	require.NoError(t, err)
	_, err = env.book.PlaceOrder("bob", Buy, 50, 4)
	require.NoError(t, err)
	_, err = env.book.Fill("bob", Sell, 2, 100, math.MaxUint32)
	require.NoError(t, err)

	snap := env.book.Snapshot()
	assert.Equal(t, "test-book", snap.BookID)
	assert.Equal(t, env.book.Snapshot(), snap)

	restored, err := NewOrderbook("test-book", env.config())
	require.NoError(t, err)
	require.NoError(t, restored.Restore(snap))

	assert.Equal(t, uint64(100), restored.AskPrice())
	assert.Equal(t, uint64(200), restored.NextPrice(Sell, 100))
	assert.Equal(t, uint64(50), restored.BidPrice())
	assert.Equal(t, env.book.PricePoint(Sell, 100), restored.PricePoint(Sell, 100))

	o, ok := restored.Order(Sell, 100, id1)
	require.True(t, ok)
	assert.Equal(t, uint64(5), o.Amount)

	// claims settle against the live escrow after restore
	claimed, _, err := restored.ClaimOrder("alice", Sell, 100, id1, math.MaxUint64)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), claimed)
}

func TestOrderbookRestoreDropsDrainedLevels(t *testing.T) {
	env := newTestBook(t)

	_, err := env.book.PlaceOrder("alice", Sell, 100, 2)
	require.NoError(t, err)
	_, err = env.book.PlaceOrder("alice", Sell, 200, 2)
	require.NoError(t, err)
	_, err = env.book.Fill("bob", Sell, 2, 100, math.MaxUint32)
	require.NoError(t, err)

	restored, err := NewOrderbook("test-book", env.config())
	require.NoError(t, err)
	require.NoError(t, restored.Restore(env.book.Snapshot()))

	// the drained level stays out of the chain but keeps its claim state
	assert.Equal(t, uint64(200), restored.AskPrice())
	assert.Equal(t, uint64(0), restored.NextPrice(Sell, 200))
	assert.Equal(t, uint64(2), restored.PricePoint(Sell, 100).TotalFilled)
}

func TestOrderbookRestoreRejectsMismatch(t *testing.T) {
	env := newTestBook(t)
	snap := env.book.Snapshot()

	other, err := NewOrderbook("other-book", env.config())
	require.NoError(t, err)
	assert.ErrorIs(t, other.Restore(snap), ErrBookNotFound)

	cfg := env.config()
	cfg.ContractSize = 20
	resized, err := NewOrderbook("test-book", cfg)
	require.NoError(t, err)
	assert.Error(t, resized.Restore(snap))
}

func TestExchangeSnapshotRoundTrip(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(nil)

	b, err := e.CreateOrderbook(env.config(), WithTakerFeeRate(decimal.RequireFromString("0.1")))
	require.NoError(t, err)

	id, err := b.PlaceOrder("alice", Sell, 100, 5)
	require.NoError(t, err)
	_, err = b.Fill("bob", Sell, 2, 100, math.MaxUint32)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "snapshot")
	meta, err := e.TakeSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, SnapshotSchemaVersion, meta.SchemaVersion)
	assert.Equal(t, EngineVersion, meta.EngineVersion)
	assert.NotZero(t, meta.SnapshotChecksum)

	_, err = os.Stat(filepath.Join(dir, "snapshot.bin"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)

	// restart: rebuild the book shell with its collaborators, then restore
	restored, err := NewOrderbook(b.ID(), env.config(), WithTakerFeeRate(decimal.RequireFromString("0.1")))
	require.NoError(t, err)
	e2 := NewExchange(nil)
	e2.Attach(restored)

	meta2, err := e2.RestoreFromSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, meta.SnapshotChecksum, meta2.SnapshotChecksum)

	assert.Equal(t, b.PricePoint(Sell, 100), restored.PricePoint(Sell, 100))
	traded, base := restored.CollectedFees()
	wantTraded, wantBase := b.CollectedFees()
	assert.Equal(t, wantTraded, traded)
	assert.Equal(t, wantBase, base)

	o, ok := restored.Order(Sell, 100, id)
	require.True(t, ok)
	assert.Equal(t, uint64(5), o.Amount)
}

func TestExchangeSnapshotOverwritesPrevious(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(nil)

	b, err := e.CreateOrderbook(env.config())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "snapshot")
	_, err = e.TakeSnapshot(dir)
	require.NoError(t, err)

	_, err = b.PlaceOrder("alice", Sell, 100, 1)
	require.NoError(t, err)
	_, err = e.TakeSnapshot(dir)
	require.NoError(t, err)

	restored, err := NewOrderbook(b.ID(), env.config())
	require.NoError(t, err)
	e2 := NewExchange(nil)
	e2.Attach(restored)

	_, err = e2.RestoreFromSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), restored.AskPrice())
}

func TestRestoreFromSnapshotUnknownBook(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(nil)

	_, err := e.CreateOrderbook(env.config())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "snapshot")
	_, err = e.TakeSnapshot(dir)
	require.NoError(t, err)

	empty := NewExchange(nil)
	_, err = empty.RestoreFromSnapshot(dir)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRestoreFromSnapshotDetectsCorruption(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(nil)

	b, err := e.CreateOrderbook(env.config())
	require.NoError(t, err)
	_, err = b.PlaceOrder("alice", Sell, 100, 1)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "snapshot")
	_, err = e.TakeSnapshot(dir)
	require.NoError(t, err)

	binPath := filepath.Join(dir, "snapshot.bin")
	data, err := os.ReadFile(binPath)
	require.NoError(t, err)
	data[0] ^= 0xff
	require.NoError(t, os.WriteFile(binPath, data, 0600))

	_, err = e.RestoreFromSnapshot(dir)
	assert.Error(t, err)
}
