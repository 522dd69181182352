package sim

import (
	"fmt"

	"kestrel/internal/book"
)

// PrintBook renders the top depth levels of each side, asks above the
// spread and bids below, best prices adjacent to the middle.
func PrintBook(b *book.Book, depth int) {
	fmt.Printf("\n********** order book: %s **********\n", b.Symbol())

	bids, asks := b.Depth(depth)
	for i := len(asks) - 1; i >= 0; i-- {
		fmt.Printf("                    %10d @ %8.2f (ASK)\n", asks[i].Volume, asks[i].Price)
	}
	fmt.Println("                    ----------------")
	fmt.Printf("                    spread: %.2f\n", b.Spread())
	fmt.Println("                    ----------------")
	for _, level := range bids {
		fmt.Printf("(BID) %8.2f @ %10d\n", level.Price, level.Volume)
	}
	fmt.Print("******************************************\n\n")
}

// PrintStats renders the running counters and latency figures.
func PrintStats(b *book.Book) {
	avg := b.AvgLatency()
	fmt.Println("\n********** statistics **********")
	fmt.Printf("total orders processed: %d\n", b.OrdersProcessed())
	fmt.Printf("total trades executed:  %d\n", b.TradesExecuted())
	fmt.Printf("average latency: %d ns (%.2f µs)\n", avg.Nanoseconds(), float64(avg.Nanoseconds())/1000.0)
	fmt.Printf("min latency: %d ns\n", b.MinLatency().Nanoseconds())
	fmt.Printf("max latency: %d ns\n", b.MaxLatency().Nanoseconds())
	fmt.Printf("best bid: $%.2f\n", b.BestBid())
	fmt.Printf("best ask: $%.2f\n", b.BestAsk())
	fmt.Printf("spread:   $%.2f\n", b.Spread())
}

// PrintTrades renders the full trade history in execution order.
func PrintTrades(b *book.Book) {
	fmt.Println("\n********** trade history **********")
	for _, t := range b.Trades() {
		fmt.Printf("trade: %s\n", t)
	}
	fmt.Println()
}

// PrintBenchmark renders one benchmark run's results.
func PrintBenchmark(b *book.Book, res BenchmarkResult) {
	avg := b.AvgLatency()
	fmt.Printf("\n********** benchmark results: %s **********\n", res.Symbol)
	fmt.Printf("total orders: %d\n", res.Orders)
	fmt.Printf("total trades: %d\n", res.Trades)
	fmt.Printf("total time:   %d ms\n", res.Elapsed.Milliseconds())
	fmt.Printf("throughput:   %.0f orders/sec\n", res.Throughput)
	fmt.Printf("avg latency:  %.3f µs (%d ns)\n", float64(avg.Nanoseconds())/1000.0, avg.Nanoseconds())
	fmt.Printf("min latency:  %d ns\n", b.MinLatency().Nanoseconds())
	fmt.Printf("max latency:  %d ns\n", b.MaxLatency().Nanoseconds())
}
