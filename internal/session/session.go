// Package session serializes access to a single book. The matching
// engine performs multi-structure updates that are not individually
// atomic, so every mutating operation for an instrument must run on
// one exclusive writer. A Session owns that writer: a single
// goroutine consumes submissions and cancellations from a channel and
// applies them in arrival order, while the book's atomic statistics
// stay readable from any goroutine.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"kestrel/internal/book"
)

const requestChanSize = 100

var ErrClosed = errors.New("session closed")

type submitResult struct {
	id  uint64
	err error
}

type submitRequest struct {
	side     book.Side
	otype    book.OrderType
	price    float64
	quantity uint64
	reply    chan submitResult
}

type cancelRequest struct {
	id    uint64
	reply chan bool
}

// Session drives one book from a single writer goroutine.
type Session struct {
	id   uuid.UUID
	book *book.Book
	t    *tomb.Tomb

	submits chan submitRequest
	cancels chan cancelRequest
}

// New starts the writer goroutine for the given book. The session
// stops when ctx is cancelled or Close is called.
func New(ctx context.Context, b *book.Book) *Session {
	t, _ := tomb.WithContext(ctx)
	s := &Session{
		id:      uuid.New(),
		book:    b,
		t:       t,
		submits: make(chan submitRequest, requestChanSize),
		cancels: make(chan cancelRequest, requestChanSize),
	}
	s.t.Go(s.run)
	return s
}

func (s *Session) run() error {
	log.Debug().
		Stringer("session", s.id).
		Str("symbol", s.book.Symbol()).
		Msg("session writer started")

	for {
		select {
		case <-s.t.Dying():
			log.Debug().Stringer("session", s.id).Msg("session writer exiting")
			return nil
		case req := <-s.submits:
			id, err := s.book.Submit(req.side, req.otype, req.price, req.quantity)
			req.reply <- submitResult{id: id, err: err}
		case req := <-s.cancels:
			req.reply <- s.book.Cancel(req.id)
		}
	}
}

// Submit enqueues an order submission and waits for the writer's
// result.
func (s *Session) Submit(ctx context.Context, side book.Side, otype book.OrderType, price float64, quantity uint64) (uint64, error) {
	reply := make(chan submitResult, 1)
	select {
	case s.submits <- submitRequest{side: side, otype: otype, price: price, quantity: quantity, reply: reply}:
	case <-s.t.Dying():
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.id, res.err
	case <-s.t.Dead():
		// The writer may have replied just before dying.
		select {
		case res := <-reply:
			return res.id, res.err
		default:
			return 0, ErrClosed
		}
	}
}

// Cancel enqueues a cancellation and reports whether the writer
// removed a live order.
func (s *Session) Cancel(ctx context.Context, id uint64) (bool, error) {
	reply := make(chan bool, 1)
	select {
	case s.cancels <- cancelRequest{id: id, reply: reply}:
	case <-s.t.Dying():
		return false, ErrClosed
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case ok := <-reply:
		return ok, nil
	case <-s.t.Dead():
		select {
		case ok := <-reply:
			return ok, nil
		default:
			return false, ErrClosed
		}
	}
}

// Stats exposes the book's running counters, safe for concurrent
// reads while the writer is live.
func (s *Session) Stats() *book.Stats {
	return s.book.Stats()
}

// Book returns the underlying book. Accessors other than Stats are
// only safe once the session is closed.
func (s *Session) Book() *book.Book {
	return s.book
}

// Close stops the writer and waits for it to exit.
func (s *Session) Close() error {
	s.t.Kill(nil)
	return s.t.Wait()
}
