package book

import "kestrel/internal/arena"

// priceLevel is the FIFO of resting orders sharing one price. Orders
// are referenced by arena handle, never by pointer, so a reclaimed
// slot can never be reached through a level. The cached volume tracks
// the sum of remaining quantities of the enqueued orders.
type priceLevel struct {
	price  float64
	fifo   []arena.Handle
	volume uint64
}

// enqueue appends an order to the tail and accounts its remaining
// quantity into the cached volume.
func (l *priceLevel) enqueue(h arena.Handle, remaining uint64) {
	l.fifo = append(l.fifo, h)
	l.volume += remaining
}

// front returns the oldest resting order without removing it.
func (l *priceLevel) front() (arena.Handle, bool) {
	if len(l.fifo) == 0 {
		return arena.Handle{}, false
	}
	return l.fifo[0], true
}

// dequeueFront removes the oldest resting order. The caller must have
// already accounted its fill through reduceVolume.
func (l *priceLevel) dequeueFront() {
	if len(l.fifo) > 0 {
		l.fifo = l.fifo[1:]
	}
}

// remove unlinks an order from anywhere in the queue, used by
// cancellation. Reports whether the handle was present.
func (l *priceLevel) remove(h arena.Handle, remaining uint64) bool {
	for i, fh := range l.fifo {
		if fh == h {
			l.fifo = append(l.fifo[:i], l.fifo[i+1:]...)
			l.reduceVolume(remaining)
			return true
		}
	}
	return false
}

// reduceVolume subtracts a traded quantity from the cached volume,
// clamped at zero.
func (l *priceLevel) reduceVolume(qty uint64) {
	if l.volume >= qty {
		l.volume -= qty
	} else {
		l.volume = 0
	}
}

func (l *priceLevel) isEmpty() bool {
	return len(l.fifo) == 0
}
