// Package book implements a single-instrument limit order book with
// strict price-time priority matching. Order storage comes from a
// chunked arena; price levels and the id index refer to orders by
// arena handle only. All mutating operations must be serialized by
// the caller (see the session package); the statistics accessors are
// safe for concurrent reads.
package book

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/btree"

	"kestrel/internal/arena"
)

var (
	ErrInvalidOrder = errors.New("order rejection: non-positive price or quantity")
)

// LevelDepth is a read-only view of one price level: its price and
// cached aggregate resting volume.
type LevelDepth struct {
	Price  float64
	Volume uint64
}

type priceLevels = btree.BTreeG[*priceLevel]

// Book is the matching engine for one instrument.
type Book struct {
	symbol string

	// Price levels keyed by price, with per-side comparators so that
	// Min is always the best price: highest first for bids, lowest
	// first for asks.
	bids *priceLevels
	asks *priceLevels

	// Every live order, resting or mid-submission, by id.
	orders map[uint64]arena.Handle

	pool   *arena.Arena[Order]
	trades []Trade
	stats  *Stats
	nextID uint64
}

// New creates an empty book with the default arena capacity.
func New(symbol string) *Book {
	b, err := NewWithCapacity(symbol, arena.DefaultChunkSize, arena.DefaultMaxChunks)
	if err != nil {
		// Only reachable with non-positive capacity constants.
		panic(err)
	}
	return b
}

// NewWithCapacity creates an empty book whose arena holds at most
// chunkSize*maxChunks live orders.
func NewWithCapacity(symbol string, chunkSize, maxChunks int) (*Book, error) {
	pool, err := arena.New[Order](chunkSize, maxChunks)
	if err != nil {
		return nil, err
	}
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price > b.price
	})
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price < b.price
	})
	return &Book{
		symbol: symbol,
		bids:   bids,
		asks:   asks,
		orders: make(map[uint64]arena.Handle),
		pool:   pool,
		stats:  newStats(),
	}, nil
}

// Submit accepts a new order, matches it against the opposite side
// under price-time priority, and returns its id. Limit remainders
// rest in the book; market remainders are discarded. The returned id
// is always a valid Lookup key, though the order may already be
// terminal (and therefore absent) by the time Submit returns.
func (b *Book) Submit(side Side, otype OrderType, price float64, quantity uint64) (uint64, error) {
	start := time.Now()

	if quantity == 0 || (otype == Limit && price <= 0) {
		return 0, ErrInvalidOrder
	}

	h, o, err := b.pool.Alloc()
	if err != nil {
		return 0, fmt.Errorf("allocate order: %w", err)
	}

	b.nextID++
	id := b.nextID
	*o = Order{
		ID:        id,
		Symbol:    b.symbol,
		Side:      side,
		Type:      otype,
		Price:     price,
		Quantity:  quantity,
		Status:    StatusNew,
		Timestamp: start,
	}
	b.orders[id] = h

	b.match(h, o)

	b.stats.recordSubmission(time.Since(start))
	return id, nil
}

// match walks the opposing price index best-price-first, consuming
// resting orders until the incoming order fills, the opposing side
// exhausts, or (limit orders) the price no longer crosses. Whatever
// remains afterwards either rests (limit) or is discarded (market).
func (b *Book) match(h arena.Handle, o *Order) {
	opposing, own := b.asks, b.bids
	if o.Side == Sell {
		opposing, own = b.bids, b.asks
	}

	for o.Filled < o.Quantity {
		// Min accounts for bids and asks being in inverse order,
		// based on their comparators: it is the best price on both.
		level, ok := opposing.MinMut()
		if !ok {
			break
		}
		if o.Type == Limit && !crosses(o, level.price) {
			break
		}
		b.consumeLevel(o, level)
		if level.isEmpty() {
			opposing.Delete(level)
		}
	}

	if o.Filled == o.Quantity {
		o.Status = StatusFilled
		b.release(o.ID, h)
		return
	}
	if o.Filled > 0 {
		o.Status = StatusPartialFill
	}
	if o.Type == Market {
		// Market orders never rest.
		b.release(o.ID, h)
		return
	}

	level, ok := own.GetMut(&priceLevel{price: o.Price})
	if !ok {
		level = &priceLevel{price: o.Price}
		own.Set(level)
	}
	level.enqueue(h, o.Remaining())
}

// consumeLevel trades the incoming order against a crossed level in
// strict FIFO order. Each pairing exhausts the incoming order, the
// resting order, or both; fully filled resting orders are evicted and
// reclaimed.
func (b *Book) consumeLevel(o *Order, level *priceLevel) {
	for o.Filled < o.Quantity {
		fh, ok := level.front()
		if !ok {
			return
		}
		resting, ok := b.pool.Get(fh)
		if !ok {
			level.dequeueFront()
			continue
		}

		qty := min(o.Remaining(), resting.Remaining())
		// Price-improvement rule: the aggressor trades at the
		// resting order's price.
		b.executeTrade(o, resting, level.price, qty)
		level.reduceVolume(qty)

		if resting.Filled == resting.Quantity {
			level.dequeueFront()
			b.release(resting.ID, fh)
		}
	}
}

// executeTrade applies one fill to both orders and appends the trade
// record.
func (b *Book) executeTrade(aggressor, resting *Order, price float64, quantity uint64) {
	buy, sell := aggressor, resting
	if aggressor.Side == Sell {
		buy, sell = resting, aggressor
	}

	buy.Filled += quantity
	sell.Filled += quantity
	buy.Status = fillStatus(buy)
	sell.Status = fillStatus(sell)

	b.trades = append(b.trades, Trade{
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Price:       price,
		Quantity:    quantity,
		Timestamp:   time.Now(),
	})
	b.stats.recordTrade()
}

// Cancel marks a live order cancelled and removes it from the book:
// the order leaves its price level FIFO, the level's cached volume
// drops by its remaining quantity, an emptied level is deleted, and
// the order's storage is reclaimed. Reports false for unknown ids and
// already-terminal orders.
func (b *Book) Cancel(id uint64) bool {
	h, ok := b.orders[id]
	if !ok {
		return false
	}
	o, ok := b.pool.Get(h)
	if !ok {
		delete(b.orders, id)
		return false
	}
	if o.Status == StatusFilled || o.Status == StatusCancelled {
		return false
	}
	o.Status = StatusCancelled

	// Any live order outside a submission is a resting limit order.
	side := b.bids
	if o.Side == Sell {
		side = b.asks
	}
	if level, found := side.GetMut(&priceLevel{price: o.Price}); found {
		if level.remove(h, o.Remaining()) && level.isEmpty() {
			side.Delete(level)
		}
	}

	b.release(id, h)
	return true
}

// Lookup returns a copy of a live order. Terminal orders are absent.
func (b *Book) Lookup(id uint64) (Order, bool) {
	h, ok := b.orders[id]
	if !ok {
		return Order{}, false
	}
	o, ok := b.pool.Get(h)
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// release drops a terminal order from the id index and reclaims its
// arena slot. Must be called at most once per order.
func (b *Book) release(id uint64, h arena.Handle) {
	delete(b.orders, id)
	_ = b.pool.Reclaim(h)
}

// crosses reports whether a limit order's price still reaches the
// given opposing level.
func crosses(o *Order, levelPrice float64) bool {
	if o.Side == Buy {
		return o.Price >= levelPrice
	}
	return o.Price <= levelPrice
}

func fillStatus(o *Order) Status {
	if o.Filled == o.Quantity {
		return StatusFilled
	}
	return StatusPartialFill
}

// --- Read-only accessors ----------------------------------------------------

// Symbol returns the instrument this book matches.
func (b *Book) Symbol() string {
	return b.symbol
}

// BestBid returns the highest resting bid price, zero if none.
func (b *Book) BestBid() float64 {
	if level, ok := b.bids.Min(); ok {
		return level.price
	}
	return 0
}

// BestAsk returns the lowest resting ask price, zero if none.
func (b *Book) BestAsk() float64 {
	if level, ok := b.asks.Min(); ok {
		return level.price
	}
	return 0
}

// Spread returns best ask minus best bid, zero if either side is
// empty.
func (b *Book) Spread() float64 {
	bid, bidOk := b.bids.Min()
	ask, askOk := b.asks.Min()
	if !bidOk || !askOk {
		return 0
	}
	return ask.price - bid.price
}

// BidVolume returns the cached resting volume at an exact bid price.
func (b *Book) BidVolume(price float64) uint64 {
	return levelVolume(b.bids, price)
}

// AskVolume returns the cached resting volume at an exact ask price.
func (b *Book) AskVolume(price float64) uint64 {
	return levelVolume(b.asks, price)
}

func levelVolume(side *priceLevels, price float64) uint64 {
	if level, ok := side.Get(&priceLevel{price: price}); ok {
		return level.volume
	}
	return 0
}

// Depth returns up to n levels per side, best price first. Bids
// descend, asks ascend.
func (b *Book) Depth(n int) (bids, asks []LevelDepth) {
	bids = sideDepth(b.bids, n)
	asks = sideDepth(b.asks, n)
	return bids, asks
}

func sideDepth(side *priceLevels, n int) []LevelDepth {
	if n <= 0 {
		return nil
	}
	out := make([]LevelDepth, 0, n)
	side.Scan(func(level *priceLevel) bool {
		out = append(out, LevelDepth{Price: level.price, Volume: level.volume})
		return len(out) < n
	})
	return out
}

// Trades returns the full trade log in execution order. The returned
// slice is the book's own log and must not be modified.
func (b *Book) Trades() []Trade {
	return b.trades
}

// Stats exposes the running counters; safe to read from any
// goroutine.
func (b *Book) Stats() *Stats {
	return b.stats
}

// OrdersProcessed reports the number of completed submissions.
func (b *Book) OrdersProcessed() uint64 {
	return b.stats.OrdersProcessed()
}

// TradesExecuted reports the number of executed trades.
func (b *Book) TradesExecuted() uint64 {
	return b.stats.TradesExecuted()
}

// AvgLatency reports the mean submission latency.
func (b *Book) AvgLatency() time.Duration {
	return b.stats.AvgLatency()
}

// MinLatency reports the fastest submission latency.
func (b *Book) MinLatency() time.Duration {
	return b.stats.MinLatency()
}

// MaxLatency reports the slowest submission latency.
func (b *Book) MaxLatency() time.Duration {
	return b.stats.MaxLatency()
}
