// Package cart holds the cashier's pending order: the selected lines, their derived
// totals, the state of every catalog card and the payload submitted with the order form.
//
// Every mutation rebuilds the whole derived state. Carts are small and edited at human
// pace, so there is no incremental bookkeeping to keep consistent.
package cart

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/shopspring/decimal"
)

// EmptyCartMessage is shown when the cashier submits an order without products.
const EmptyCartMessage = "Impossibile inviare l'ordine: nessun prodotto selezionato."

var ErrEmptyCart = errors.New(EmptyCartMessage)

// Line is one product in the cart. Name, UnitPrice and MaxAvailable are captured when the
// product is first added and never re-read from the catalog.
type Line struct {
	ID           int
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
	MaxAvailable int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PayloadItem is the wire form of a line inside the hidden "prodotti" field.
type PayloadItem struct {
	ID       int         `json:"id"`
	Nome     string      `json:"nome"`
	Prezzo   json.Number `json:"prezzo"`
	Quantita int         `json:"quantita"`
}

// Cart is safe for concurrent use.
type Cart struct {
	mu sync.Mutex

	lines   []*Line
	catalog []catalogCard

	summary Summary
	cards   map[int]CardState
	payload string

	render func(Summary)
}

type catalogCard struct {
	id    int
	limit int
}

type Option func(*Cart)

// WithRenderer registers a callback invoked with the rebuilt summary after every mutation.
func WithRenderer(fn func(Summary)) Option {
	return func(c *Cart) { c.render = fn }
}

// New returns an empty cart bound to the catalog cards shown on screen.
func New(catalog []orders.Product, opts ...Option) *Cart {
	c := &Cart{}
	seen := make(map[int]bool, len(catalog))
	for _, p := range catalog {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		c.catalog = append(c.catalog, catalogCard{id: p.ID, limit: p.Quantita})
	}
	for _, o := range opts {
		o(c)
	}
	c.mu.Lock()
	c.recompute()
	c.mu.Unlock()
	return c
}

// AddProduct adds one unit of a product. An existing line grows only while it is below
// the cap captured when it was created; at the cap the call silently does nothing.
func (c *Cart) AddProduct(id int, name string, unitPrice decimal.Decimal, maxAvailable int) {
	c.mutate(func() {
		if l := c.find(id); l != nil {
			if l.Quantity < l.MaxAvailable {
				l.Quantity++
			}
			return
		}
		if maxAvailable < 1 {
			return
		}
		c.lines = append(c.lines, &Line{ID: id, Name: name, UnitPrice: unitPrice, Quantity: 1, MaxAvailable: maxAvailable})
	})
}

// AddFromCatalog is AddProduct driven by a catalog card.
func (c *Cart) AddFromCatalog(p orders.Product) {
	c.AddProduct(p.ID, p.Nome, p.Prezzo, p.Quantita)
}

// IncreaseLine adds one unit to a line already in the cart, bounded by the line's cap.
func (c *Cart) IncreaseLine(id int) {
	c.mutate(func() {
		l := c.find(id)
		if l == nil {
			return
		}
		if l.Quantity < l.MaxAvailable {
			l.Quantity++
		}
	})
}

// RemoveOneUnit removes one unit; the line disappears when it reaches zero.
func (c *Cart) RemoveOneUnit(id int) {
	c.mutate(func() {
		i := c.index(id)
		if i < 0 {
			return
		}
		c.lines[i].Quantity--
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
	})
}

// RemoveLine drops the line regardless of its quantity.
func (c *Cart) RemoveLine(id int) {
	c.mutate(func() {
		if i := c.index(id); i >= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
	})
}

// Clear empties the cart, typically after a successful submission.
func (c *Cart) Clear() {
	c.mutate(func() { c.lines = nil })
}

func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, *l)
	}
	return out
}

// Quantity of a product in the cart, 0 when absent.
func (c *Cart) Quantity(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l := c.find(id); l != nil {
		return l.Quantity
	}
	return 0
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

func (c *Cart) Empty() bool { return c.Len() == 0 }

func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary.Total
}

// Payload returns the JSON array submitted in the hidden "prodotti" field.
func (c *Cart) Payload() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload
}

func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary.clone()
}

// Card returns the displayed state of a catalog card. ok is false for unknown products.
func (c *Cart) Card(id int) (CardState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.cards[id]
	return s, ok
}

// CheckSubmittable guards the order form: an empty cart must never reach the network.
func (c *Cart) CheckSubmittable() error {
	if c.Empty() {
		return ErrEmptyCart
	}
	return nil
}

func (c *Cart) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.recompute()
	s := c.summary.clone()
	render := c.render
	c.mu.Unlock()

	if render != nil {
		render(s)
	}
}

func (c *Cart) find(id int) *Line {
	if i := c.index(id); i >= 0 {
		return c.lines[i]
	}
	return nil
}

func (c *Cart) index(id int) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// recompute must be called with mu held.
func (c *Cart) recompute() {
	total := decimal.Zero
	rows := make([]Row, 0, len(c.lines))
	items := make([]PayloadItem, 0, len(c.lines))

	for _, l := range c.lines {
		sub := l.Subtotal()
		total = total.Add(sub)

		rows = append(rows, Row{
			ID:            l.ID,
			Name:          l.Name,
			Quantity:      l.Quantity,
			Subtotal:      sub,
			PlusDisabled:  l.Quantity >= l.MaxAvailable,
			MinusDisabled: l.Quantity <= 1,
		})

		items = append(items, PayloadItem{
			ID:       l.ID,
			Nome:     l.Name,
			Prezzo:   json.Number(l.UnitPrice.String()),
			Quantita: l.Quantity,
		})
	}

	c.summary = Summary{Rows: rows, Total: total}

	b, err := json.Marshal(items)
	if err != nil {
		// json.Number from decimal.String is always a valid number
		panic(err)
	}
	c.payload = string(b)

	c.syncCards()
}

func (c *Cart) syncCards() {
	cards := make(map[int]CardState, len(c.catalog))
	for _, card := range c.catalog {
		l := c.find(card.id)
		if l == nil {
			cards[card.id] = CardState{PlusDisabled: card.limit < 1, MinusDisabled: true}
			continue
		}
		cards[card.id] = CardState{
			Quantity:      l.Quantity,
			Selected:      true,
			PlusDisabled:  l.Quantity >= l.MaxAvailable,
			MinusDisabled: l.Quantity <= 0,
		}
	}
	c.cards = cards
}
