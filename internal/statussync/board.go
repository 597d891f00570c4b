// Package statussync keeps the order cards of one kitchen/bar dashboard in step with the
// server.
//
// Advancing a card is optimistic: the next status is shown immediately, the server is asked
// to apply it, and its answer either replaces the guess (reconciliation) or, on failure,
// restores the card exactly as it was before the call (rollback).
package statussync

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/ariefcatur/resto-pos/internal/orders"
)

var (
	ErrUnknownOrder = errors.New("order not on board")
	ErrPending      = errors.New("status change already in flight")
)

// StatusChanger asks the server to advance an order for a category and returns the
// status the server settled on. An empty status means the server did not say.
type StatusChanger interface {
	ChangeStatus(ctx context.Context, orderID int, categoria string) (orders.Stato, error)
}

// Card is one order as shown on the dashboard.
type Card struct {
	ID       int
	Category string
	Status   orders.Stato
}

func NewCard(id int, category string, status orders.Stato) Card {
	return Card{ID: id, Category: category, Status: status}
}

// Inert reports whether the card is completed: dimmed and accepting no further interaction.
func (c Card) Inert() bool { return c.Status.Terminal() }

// Outcome is the result of one Advance call.
type Outcome struct {
	OrderID   int
	Previous  orders.Stato
	Predicted orders.Stato
	Final     orders.Stato

	Skipped    bool // nothing to do: terminal, unknown status, unknown order or guarded
	Reconciled bool // server answer differed from the prediction and won
	RolledBack bool
	Err        error
}

type Option func(*Board)

// WithPendingGuard serializes changes per card: while a request for a card is in flight,
// further Advance calls on it are refused with ErrPending.
func WithPendingGuard() Option {
	return func(b *Board) { b.guard = true }
}

// WithObserver is notified with the new card state after each visible change.
func WithObserver(fn func(Card)) Option {
	return func(b *Board) { b.observe = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.log = l }
}

// Board is safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	cards   map[int]*Card
	pending map[int]int

	changer StatusChanger
	guard   bool
	observe func(Card)
	log     *slog.Logger
}

func NewBoard(changer StatusChanger, opts ...Option) *Board {
	b := &Board{
		cards:   make(map[int]*Card),
		pending: make(map[int]int),
		changer: changer,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Replace swaps the whole set of cards, as after a partial refresh. Requests still in
// flight for replaced cards resolve without touching the new ones.
func (b *Board) Replace(cards []Card) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cards = make(map[int]*Card, len(cards))
	for i := range cards {
		c := cards[i]
		b.cards[c.ID] = &c
	}
}

func (b *Board) Card(id int) (Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[id]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// Cards returns every card ordered by id.
func (b *Board) Cards() []Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Card, 0, len(b.cards))
	for _, c := range b.cards {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Pending reports whether a status change for the card is in flight.
func (b *Board) Pending(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[id] > 0
}

type change struct {
	card      *Card
	snapshot  Card
	predicted orders.Stato
}

// Advance moves a card one step forward and waits for the server's answer.
func (b *Board) Advance(ctx context.Context, id int) Outcome {
	ch, out := b.begin(id)
	if ch == nil {
		return out
	}
	return b.finish(ctx, ch)
}

// AdvanceAsync applies the optimistic update before returning and resolves the request in
// the background. The channel yields exactly one Outcome.
func (b *Board) AdvanceAsync(ctx context.Context, id int) <-chan Outcome {
	res := make(chan Outcome, 1)
	ch, out := b.begin(id)
	if ch == nil {
		res <- out
		close(res)
		return res
	}
	go func() {
		res <- b.finish(ctx, ch)
		close(res)
	}()
	return res
}

func (b *Board) begin(id int) (*change, Outcome) {
	b.mu.Lock()

	card, ok := b.cards[id]
	if !ok {
		b.mu.Unlock()
		return nil, Outcome{OrderID: id, Skipped: true, Err: ErrUnknownOrder}
	}
	out := Outcome{OrderID: id, Previous: card.Status, Predicted: card.Status, Final: card.Status}

	predicted, ok := card.Status.Next()
	if !ok {
		b.mu.Unlock()
		out.Skipped = true
		return nil, out
	}
	if b.guard && b.pending[id] > 0 {
		b.mu.Unlock()
		out.Skipped = true
		out.Err = ErrPending
		return nil, out
	}

	ch := &change{card: card, snapshot: *card, predicted: predicted}
	card.Status = predicted
	b.pending[id]++
	shown := *card
	b.mu.Unlock()

	b.notify(shown)
	return ch, out
}

func (b *Board) finish(ctx context.Context, ch *change) Outcome {
	snap := ch.snapshot
	server, err := b.changer.ChangeStatus(ctx, snap.ID, snap.Category)

	b.mu.Lock()
	if b.pending[snap.ID] > 1 {
		b.pending[snap.ID]--
	} else {
		delete(b.pending, snap.ID)
	}

	out := Outcome{OrderID: snap.ID, Previous: snap.Status, Predicted: ch.predicted}
	live := b.cards[snap.ID] == ch.card

	switch {
	case err != nil:
		out.Err = err
		out.RolledBack = true
		if live {
			*ch.card = snap
		}
	case server != "" && server != ch.predicted:
		out.Reconciled = true
		if live {
			ch.card.Status = server
		}
	}
	out.Final = ch.card.Status
	shown := *ch.card
	b.mu.Unlock()

	if err != nil {
		b.log.Error("status change failed",
			"order_id", snap.ID, "categoria", snap.Category, "rollback_to", snap.Status, "err", err)
	}
	if out.Reconciled && !server.Valid() {
		b.log.Warn("unrecognized status from server",
			"order_id", snap.ID, "categoria", snap.Category, "nuovo_stato", server)
	}
	if live && (out.RolledBack || out.Reconciled) {
		b.notify(shown)
	}
	return out
}

func (b *Board) notify(c Card) {
	if b.observe != nil {
		b.observe(c)
	}
}
