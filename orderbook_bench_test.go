package book

import (
	"math"
	"math/rand"
	"testing"

	"github.com/claimdex/orderbook/asset"
)

func newBenchBook(b *testing.B) *Orderbook {
	traded := asset.NewLedger("BTC")
	base := asset.NewLedger("USD")
	addresses := NewMemoryAddressBook()
	for _, account := range []string{"maker", "taker"} {
		addresses.Register(account)
		traded.Mint(account, math.MaxUint64/4)
		base.Mint(account, math.MaxUint64/4)
	}

	ob, err := NewOrderbook("bench", Config{
		TradedAsset:  asset.NewEscrow(traded, "bench-escrow"),
		BaseAsset:    asset.NewEscrow(base, "bench-escrow"),
		ContractSize: 10,
		PriceTick:    1,
		AddressBook:  addresses,
		Treasury:     "treasury",
	})
	if err != nil {
		b.Fatal(err)
	}
	return ob
}

func BenchmarkPlaceOrder(b *testing.B) {
	ob := newBenchBook(b)

	// fixed seed for repeatability, 500 ticks around a mid price
	rng := rand.New(rand.NewSource(42))
	midPrice := uint64(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		offset := uint64(rng.Intn(500) + 1)
		if rng.Intn(2) == 0 {
			_, _ = ob.PlaceOrder("maker", Buy, midPrice-offset, 1)
		} else {
			_, _ = ob.PlaceOrder("maker", Sell, midPrice+offset, 1)
		}
	}

	b.StopTimer()
	totalSeconds := b.Elapsed().Seconds()
	if totalSeconds > 0 {
		b.ReportMetric(float64(b.N)/totalSeconds, "orders/sec")
	}
}

func BenchmarkPlaceAndFill(b *testing.B) {
	ob := newBenchBook(b)
	price := uint64(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ob.PlaceOrder("maker", Sell, price, 1)
		_, _ = ob.Fill("taker", Sell, 1, price, 1)
	}

	b.StopTimer()
	totalSeconds := b.Elapsed().Seconds()
	if totalSeconds > 0 {
		b.ReportMetric(float64(b.N)*2/totalSeconds, "orders/sec")
	}
}
