// Package sim contains the demo and benchmark drivers: synthetic
// order flow generation, formatted book/stats reporting, and the
// scripted scenario run. It is a caller of the engine's public
// operations and carries no matching logic of its own.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"kestrel/internal/book"
	"kestrel/internal/session"
)

// RunDemo seeds a small market, sweeps it with a market order and an
// aggressive limit order, and prints the book after each step. Orders
// flow through a session to exercise the single-writer model end to
// end.
func RunDemo(ctx context.Context, cfg Config) error {
	b, err := book.NewWithCapacity(cfg.DemoSymbol, cfg.ArenaChunkSize, cfg.ArenaMaxChunks)
	if err != nil {
		return err
	}
	s := session.New(ctx, b)

	fmt.Println("demo 1: initial market")
	demoOrders := []struct {
		side  book.Side
		otype book.OrderType
		price float64
		qty   uint64
	}{
		{book.Buy, book.Limit, 150.00, 100},
		{book.Buy, book.Limit, 149.50, 200},
		{book.Sell, book.Limit, 151.00, 150},
		{book.Sell, book.Limit, 151.50, 100},
	}
	for _, o := range demoOrders {
		if _, err := s.Submit(ctx, o.side, o.otype, o.price, o.qty); err != nil {
			return fmt.Errorf("demo submit: %w", err)
		}
	}
	if err := s.Close(); err != nil {
		return err
	}
	PrintBook(b, cfg.Depth)

	fmt.Println("demo 2: market order execution")
	if _, err := b.Submit(book.Buy, book.Market, 0, 120); err != nil {
		return fmt.Errorf("demo submit: %w", err)
	}
	PrintBook(b, cfg.Depth)

	fmt.Println("demo 3: limit order crossing the spread")
	if _, err := b.Submit(book.Sell, book.Limit, 149.00, 150); err != nil {
		return fmt.Errorf("demo submit: %w", err)
	}
	PrintBook(b, cfg.Depth)

	PrintStats(b)
	PrintTrades(b)
	return nil
}

// BenchmarkResult summarizes one randomized flow run.
type BenchmarkResult struct {
	RunID      uuid.UUID
	Symbol     string
	Orders     uint64
	Trades     uint64
	Elapsed    time.Duration
	Throughput float64 // orders per second
}

// RunBenchmark pushes numOrders random limit orders through a fresh
// book and measures wall-clock throughput. Prices are drawn uniformly
// from the configured range, rounded to cents.
func RunBenchmark(cfg Config, symbol string, numOrders int, maxQty uint64) (BenchmarkResult, error) {
	b, err := book.NewWithCapacity(symbol, cfg.ArenaChunkSize, cfg.ArenaMaxChunks)
	if err != nil {
		return BenchmarkResult{}, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	runID := uuid.New()

	log.Info().
		Stringer("run", runID).
		Str("symbol", symbol).
		Int("orders", numOrders).
		Uint64("seed", seed).
		Msg("benchmark starting")

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		side := book.Buy
		if rng.IntN(2) == 1 {
			side = book.Sell
		}
		price := math.Round((cfg.PriceMin+rng.Float64()*(cfg.PriceMax-cfg.PriceMin))*100) / 100
		qty := cfg.QtyMin + rng.Uint64N(maxQty-cfg.QtyMin+1)

		if _, err := b.Submit(side, book.Limit, price, qty); err != nil {
			return BenchmarkResult{}, fmt.Errorf("benchmark submit %d: %w", i, err)
		}

		if (i+1)%100_000 == 0 {
			log.Info().Stringer("run", runID).Int("processed", i+1).Msg("benchmark progress")
		}
	}
	elapsed := time.Since(start)

	res := BenchmarkResult{
		RunID:      runID,
		Symbol:     symbol,
		Orders:     b.OrdersProcessed(),
		Trades:     b.TradesExecuted(),
		Elapsed:    elapsed,
		Throughput: float64(numOrders) / elapsed.Seconds(),
	}
	PrintBenchmark(b, res)
	return res, nil
}
