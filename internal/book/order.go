package book

import (
	"fmt"
	"time"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

type OrderType int

const (
	// Limit orders execute at their limit price or better and may
	// rest on the book until filled or cancelled.
	Limit OrderType = iota
	// Market orders execute immediately against the best available
	// prices and never rest; any unfillable remainder is discarded.
	Market
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	}
	return fmt.Sprintf("OrderType(%d)", int(t))
}

type Status int

const (
	StatusNew Status = iota
	StatusPartialFill
	StatusFilled
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusPartialFill:
		return "PARTIAL_FILL"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

type Order struct {
	ID        uint64    // Book-assigned, strictly increasing
	Symbol    string    // Instrument identifier
	Side      Side      // Order side
	Type      OrderType // Limit or market
	Price     float64   // Limit price; ignored for market orders
	Quantity  uint64    // Total volume requested
	Filled    uint64    // Cumulative filled volume
	Status    Status    // Derived from Filled vs Quantity, plus cancellation
	Timestamp time.Time // Time of arrival into the book
}

// Remaining reports the unfilled volume.
func (o Order) Remaining() uint64 {
	return o.Quantity - o.Filled
}

func (o Order) String() string {
	return fmt.Sprintf("#%d %s %s %s %d/%d @ %.2f [%s]",
		o.ID, o.Symbol, o.Side, o.Type, o.Filled, o.Quantity, o.Price, o.Status)
}
