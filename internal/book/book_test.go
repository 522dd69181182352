package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/internal/arena"
)

// --- Setup & Helpers --------------------------------------------------------

func newTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := NewWithCapacity("TEST", 16, 16)
	require.NoError(t, err)
	return b
}

func submitLimit(t *testing.T, b *Book, side Side, price float64, qty uint64) uint64 {
	t.Helper()
	id, err := b.Submit(side, Limit, price, qty)
	require.NoError(t, err)
	return id
}

// seedDemoMarket builds a small non-crossing market: bids 150.00x100
// and 149.50x200, asks 151.00x150 and 151.50x100.
func seedDemoMarket(t *testing.T, b *Book) {
	t.Helper()
	submitLimit(t, b, Buy, 150.00, 100)
	submitLimit(t, b, Buy, 149.50, 200)
	submitLimit(t, b, Sell, 151.00, 150)
	submitLimit(t, b, Sell, 151.50, 100)
}

// --- Submission & resting ---------------------------------------------------

func TestSubmit_RestingMarketNoTrades(t *testing.T) {
	b := newTestBook(t)
	seedDemoMarket(t, b)

	assert.Empty(t, b.Trades())
	assert.Equal(t, 150.00, b.BestBid())
	assert.Equal(t, 151.00, b.BestAsk())
	assert.Equal(t, 1.00, b.Spread())
	assert.Equal(t, uint64(100), b.BidVolume(150.00))
	assert.Equal(t, uint64(200), b.BidVolume(149.50))
	assert.Equal(t, uint64(150), b.AskVolume(151.00))
	assert.Equal(t, uint64(100), b.AskVolume(151.50))
}

func TestSubmit_MarketOrderPartialSweep(t *testing.T) {
	b := newTestBook(t)
	seedDemoMarket(t, b)

	id, err := b.Submit(Buy, Market, 0, 120)
	require.NoError(t, err)

	trades := b.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(120), trades[0].Quantity)
	assert.Equal(t, 151.00, trades[0].Price)
	assert.Equal(t, id, trades[0].BuyOrderID)

	// Best ask partially consumed, 30 left at 151.00.
	assert.Equal(t, 151.00, b.BestAsk())
	assert.Equal(t, uint64(30), b.AskVolume(151.00))

	// A filled market order is terminal and no longer live.
	_, ok := b.Lookup(id)
	assert.False(t, ok)
}

func TestSubmit_LimitCrossingSpread(t *testing.T) {
	b := newTestBook(t)
	seedDemoMarket(t, b)
	_, err := b.Submit(Buy, Market, 0, 120)
	require.NoError(t, err)

	// Crosses through the 150.00 bid down past 149.50, fully filling
	// against the 150.00 level first, then 149.50.
	id, err := b.Submit(Sell, Limit, 149.00, 150)
	require.NoError(t, err)

	trades := b.Trades()
	require.Len(t, trades, 3)
	assert.Equal(t, 150.00, trades[1].Price)
	assert.Equal(t, uint64(100), trades[1].Quantity)
	assert.Equal(t, 149.50, trades[2].Price)
	assert.Equal(t, uint64(50), trades[2].Quantity)
	assert.Equal(t, id, trades[1].SellOrderID)
	assert.Equal(t, id, trades[2].SellOrderID)

	// Fully filled: never rests, terminal.
	assert.Equal(t, 149.50, b.BestBid())
	assert.Equal(t, uint64(150), b.BidVolume(149.50))
	assert.Equal(t, uint64(0), b.AskVolume(149.00))
	_, ok := b.Lookup(id)
	assert.False(t, ok)
}

func TestSubmit_AggressorTradesAtRestingPrice(t *testing.T) {
	b := newTestBook(t)
	submitLimit(t, b, Sell, 100.00, 50)

	// The buyer was willing to pay 102 but trades at the resting 100.
	submitLimit(t, b, Buy, 102.00, 50)

	trades := b.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 100.00, trades[0].Price)
}

func TestSubmit_PartialFillRemainderRests(t *testing.T) {
	b := newTestBook(t)
	submitLimit(t, b, Sell, 100.00, 100)

	id := submitLimit(t, b, Buy, 100.00, 150)

	require.Len(t, b.Trades(), 1)
	assert.Equal(t, uint64(100), b.Trades()[0].Quantity)

	o, ok := b.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, StatusPartialFill, o.Status)
	assert.Equal(t, uint64(100), o.Filled)
	assert.Equal(t, uint64(50), o.Remaining())

	assert.Equal(t, 100.00, b.BestBid())
	assert.Equal(t, uint64(50), b.BidVolume(100.00))
	assert.Equal(t, float64(0), b.BestAsk())
}

func TestSubmit_FIFOWithinLevel(t *testing.T) {
	b := newTestBook(t)
	first := submitLimit(t, b, Sell, 100.00, 60)
	second := submitLimit(t, b, Sell, 100.00, 40)

	submitLimit(t, b, Buy, 100.00, 100)

	trades := b.Trades()
	require.Len(t, trades, 2)
	// Earlier arrival fills first, and fully, before the later one.
	assert.Equal(t, first, trades[0].SellOrderID)
	assert.Equal(t, uint64(60), trades[0].Quantity)
	assert.Equal(t, second, trades[1].SellOrderID)
	assert.Equal(t, uint64(40), trades[1].Quantity)
}

func TestSubmit_MarketNeverRests(t *testing.T) {
	b := newTestBook(t)
	submitLimit(t, b, Sell, 100.00, 30)

	// More quantity than the book holds: remainder is discarded.
	id, err := b.Submit(Buy, Market, 0, 100)
	require.NoError(t, err)

	require.Len(t, b.Trades(), 1)
	assert.Equal(t, uint64(30), b.Trades()[0].Quantity)
	assert.Equal(t, float64(0), b.BestBid())
	assert.Equal(t, float64(0), b.BestAsk())
	_, ok := b.Lookup(id)
	assert.False(t, ok)
}

func TestSubmit_MarketOnEmptyBookIsVoid(t *testing.T) {
	b := newTestBook(t)

	id, err := b.Submit(Sell, Market, 0, 50)
	require.NoError(t, err)

	assert.Empty(t, b.Trades())
	assert.Equal(t, float64(0), b.BestBid())
	assert.Equal(t, float64(0), b.BestAsk())
	_, ok := b.Lookup(id)
	assert.False(t, ok)
}

func TestSubmit_MonotonicIDs(t *testing.T) {
	b := newTestBook(t)

	var last uint64
	for i := 0; i < 5; i++ {
		id := submitLimit(t, b, Buy, 99.00, 10)
		assert.Greater(t, id, last)
		last = id
	}

	// Rejected submissions do not consume ids.
	_, err := b.Submit(Buy, Limit, 99.00, 0)
	require.ErrorIs(t, err, ErrInvalidOrder)
	id := submitLimit(t, b, Buy, 99.00, 10)
	assert.Equal(t, last+1, id)
}

func TestSubmit_RejectsInvalidParameters(t *testing.T) {
	b := newTestBook(t)

	_, err := b.Submit(Buy, Limit, 100.00, 0)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = b.Submit(Buy, Limit, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = b.Submit(Sell, Limit, -1.50, 10)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	// Market orders ignore price entirely.
	_, err = b.Submit(Sell, Market, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = b.Submit(Sell, Market, -5, 10)
	assert.NoError(t, err)

	assert.Equal(t, uint64(1), b.OrdersProcessed())
}

func TestSubmit_ArenaExhaustion(t *testing.T) {
	b, err := NewWithCapacity("TEST", 1, 2)
	require.NoError(t, err)

	first := submitLimit(t, b, Buy, 99.00, 10)
	submitLimit(t, b, Buy, 98.00, 10)

	_, err = b.Submit(Buy, Limit, 97.00, 10)
	require.ErrorIs(t, err, arena.ErrExhausted)

	// The failed submission left the book untouched.
	assert.Equal(t, 99.00, b.BestBid())
	assert.Equal(t, uint64(10), b.BidVolume(99.00))
	assert.Equal(t, uint64(10), b.BidVolume(98.00))

	// Reclaimed slots admit new submissions.
	require.True(t, b.Cancel(first))
	_, err = b.Submit(Buy, Limit, 97.00, 10)
	assert.NoError(t, err)
}

// --- Cancel & lookup --------------------------------------------------------

func TestCancel_RemovesRestingOrder(t *testing.T) {
	b := newTestBook(t)
	id := submitLimit(t, b, Buy, 150.00, 100)
	submitLimit(t, b, Buy, 149.50, 200)

	require.True(t, b.Cancel(id))

	// The order leaves its level, the level disappears, and the id
	// is no longer live.
	assert.Equal(t, 149.50, b.BestBid())
	assert.Equal(t, uint64(0), b.BidVolume(150.00))
	_, ok := b.Lookup(id)
	assert.False(t, ok)

	// A cancelled order can never match.
	submitLimit(t, b, Sell, 150.00, 50)
	assert.Empty(t, b.Trades())
	assert.Equal(t, 150.00, b.BestAsk())
}

func TestCancel_PartiallyFilledOrder(t *testing.T) {
	b := newTestBook(t)
	id := submitLimit(t, b, Buy, 100.00, 100)
	submitLimit(t, b, Sell, 100.00, 40)

	require.Len(t, b.Trades(), 1)
	require.Equal(t, uint64(60), b.BidVolume(100.00))

	require.True(t, b.Cancel(id))
	assert.Equal(t, uint64(0), b.BidVolume(100.00))
	assert.Equal(t, float64(0), b.BestBid())
}

func TestCancel_MiddleOfQueueKeepsLevel(t *testing.T) {
	b := newTestBook(t)
	first := submitLimit(t, b, Sell, 100.00, 60)
	middle := submitLimit(t, b, Sell, 100.00, 40)
	last := submitLimit(t, b, Sell, 100.00, 20)

	require.True(t, b.Cancel(middle))
	assert.Equal(t, 100.00, b.BestAsk())
	assert.Equal(t, uint64(80), b.AskVolume(100.00))

	// FIFO order of the survivors is preserved.
	submitLimit(t, b, Buy, 100.00, 80)
	trades := b.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, first, trades[0].SellOrderID)
	assert.Equal(t, last, trades[1].SellOrderID)
}

func TestCancel_UnknownAndTerminal(t *testing.T) {
	b := newTestBook(t)

	assert.False(t, b.Cancel(12345))

	id := submitLimit(t, b, Sell, 100.00, 50)
	submitLimit(t, b, Buy, 100.00, 50)

	// Fully filled orders are terminal and refuse cancellation.
	assert.False(t, b.Cancel(id))

	cancelled := submitLimit(t, b, Buy, 99.00, 10)
	require.True(t, b.Cancel(cancelled))
	assert.False(t, b.Cancel(cancelled))
}

func TestLookup(t *testing.T) {
	b := newTestBook(t)
	id := submitLimit(t, b, Buy, 99.00, 10)

	o, ok := b.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, id, o.ID)
	assert.Equal(t, "TEST", o.Symbol)
	assert.Equal(t, Buy, o.Side)
	assert.Equal(t, StatusNew, o.Status)
	assert.Equal(t, uint64(10), o.Remaining())

	_, ok = b.Lookup(id + 1)
	assert.False(t, ok)
}

// --- Instrumentation --------------------------------------------------------

func TestStats_CountersAndLatency(t *testing.T) {
	b := newTestBook(t)
	seedDemoMarket(t, b)
	_, err := b.Submit(Buy, Market, 0, 120)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), b.OrdersProcessed())
	assert.Equal(t, uint64(1), b.TradesExecuted())
	assert.EqualValues(t, 1, len(b.Trades()))

	assert.Greater(t, b.AvgLatency().Nanoseconds(), int64(0))
	assert.Greater(t, b.MinLatency().Nanoseconds(), int64(0))
	assert.LessOrEqual(t, b.MinLatency(), b.MaxLatency())
	assert.LessOrEqual(t, b.MinLatency(), b.AvgLatency())
	assert.LessOrEqual(t, b.AvgLatency(), b.MaxLatency())
}

func TestDepth(t *testing.T) {
	b := newTestBook(t)
	seedDemoMarket(t, b)

	bids, asks := b.Depth(5)
	require.Len(t, bids, 2)
	require.Len(t, asks, 2)
	assert.Equal(t, LevelDepth{Price: 150.00, Volume: 100}, bids[0])
	assert.Equal(t, LevelDepth{Price: 149.50, Volume: 200}, bids[1])
	assert.Equal(t, LevelDepth{Price: 151.00, Volume: 150}, asks[0])
	assert.Equal(t, LevelDepth{Price: 151.50, Volume: 100}, asks[1])

	bids, asks = b.Depth(1)
	assert.Len(t, bids, 1)
	assert.Len(t, asks, 1)
}
