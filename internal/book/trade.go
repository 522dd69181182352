package book

import (
	"fmt"
	"time"
)

// Trade is an immutable execution record linking the two matched
// orders. Trades execute at the resting order's price.
type Trade struct {
	BuyOrderID  uint64
	SellOrderID uint64
	Price       float64
	Quantity    uint64
	Timestamp   time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf("buy #%d x sell #%d | qty %d @ %.2f",
		t.BuyOrderID, t.SellOrderID, t.Quantity, t.Price)
}
