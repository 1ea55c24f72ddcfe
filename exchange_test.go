package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdex/orderbook/asset"
)

func (env *testEnv) config() Config {
	return Config{
		TradedAsset:  asset.NewEscrow(env.traded, escrowAccount),
		BaseAsset:    asset.NewEscrow(env.base, escrowAccount),
		ContractSize: 10,
		PriceTick:    1,
		AddressBook:  env.addresses,
		Treasury:     "treasury",
	}
}

func TestExchangeCreateOrderbook(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(env.publisher)

	b, err := e.CreateOrderbook(env.config())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID())
	assert.Same(t, b, e.Orderbook(b.ID()))

	b2, err := e.CreateOrderbook(env.config())
	require.NoError(t, err)
	assert.NotEqual(t, b.ID(), b2.ID())
	assert.Len(t, e.Books(), 2)

	events := env.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventBookCreated, events[0].Type)
	assert.Equal(t, b.ID(), events[0].BookID)
	assert.Equal(t, "BTC", events[0].TradedAsset)
	assert.Equal(t, "USD", events[0].BaseAsset)
	assert.Equal(t, uint64(10), events[0].ContractSize)
	assert.Equal(t, uint64(1), events[0].PriceTick)
}

func TestExchangeCreateOrderbookInvalidConfig(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(nil)

	cfg := env.config()
	cfg.ContractSize = 0
	_, err := e.CreateOrderbook(cfg)
	assert.ErrorIs(t, err, ErrInvalidContractSize)
	assert.Empty(t, e.Books())
}

func TestExchangeUnknownBook(t *testing.T) {
	e := NewExchange(nil)
	assert.Nil(t, e.Orderbook("missing"))
}

func TestExchangeAttach(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(nil)

	e.Attach(env.book)
	assert.Same(t, env.book, e.Orderbook(env.book.ID()))
}

func TestExchangeBookIsTradeable(t *testing.T) {
	env := newTestBook(t)
	e := NewExchange(env.publisher)

	b, err := e.CreateOrderbook(env.config())
	require.NoError(t, err)

	id, err := b.PlaceOrder("alice", Sell, 100, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	// the created event took sequence id 1
	events := env.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, EventBookCreated, events[0].Type)
	assert.Equal(t, EventPlaced, events[1].Type)
	assert.Equal(t, uint64(2), events[1].SequenceID)
}
