package cart

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCatalog() []orders.Product {
	return []orders.Product{
		{ID: 1, Nome: "Spritz", Prezzo: price("5.00"), Quantita: 3},
		{ID: 2, Nome: "Gnocchi", Prezzo: price("3.50"), Quantita: 10},
		{ID: 3, Nome: "Esaurito", Prezzo: price("2.00"), Quantita: 0},
	}
}

func TestAddProduct(t *testing.T) {
	tests := []struct {
		name    string
		adds    int
		max     int
		wantQty int
	}{
		{name: "first add creates line", adds: 1, max: 3, wantQty: 1},
		{name: "repeated adds increment", adds: 2, max: 3, wantQty: 2},
		{name: "adds stop at cap", adds: 5, max: 3, wantQty: 3},
		{name: "no stock never adds", adds: 2, max: 0, wantQty: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			for i := 0; i < tt.adds; i++ {
				c.AddProduct(7, "Birra", price("4.00"), tt.max)
			}
			assert.Equal(t, tt.wantQty, c.Quantity(7))
			if tt.wantQty == 0 {
				assert.True(t, c.Empty())
			}
		})
	}
}

func TestRemoveOneUnit(t *testing.T) {
	c := New(testCatalog())
	c.AddFromCatalog(testCatalog()[0])
	c.AddFromCatalog(testCatalog()[0])

	c.RemoveOneUnit(1)
	assert.Equal(t, 1, c.Quantity(1))

	c.RemoveOneUnit(1)
	assert.Equal(t, 0, c.Quantity(1))
	assert.Empty(t, c.Lines())

	// absent id is a no-op
	c.RemoveOneUnit(1)
	c.RemoveOneUnit(42)
	assert.Empty(t, c.Lines())
}

func TestRemoveLine(t *testing.T) {
	c := New(testCatalog())
	for i := 0; i < 3; i++ {
		c.AddFromCatalog(testCatalog()[1])
	}
	c.AddFromCatalog(testCatalog()[0])

	c.RemoveLine(2)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].ID)
}

func TestInsertionOrderIsKept(t *testing.T) {
	c := New(testCatalog())
	c.AddFromCatalog(testCatalog()[1])
	c.AddFromCatalog(testCatalog()[0])
	c.AddFromCatalog(testCatalog()[1])

	rows := c.Summary().Rows
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].ID)
	assert.Equal(t, 1, rows[1].ID)
}

func TestTotal(t *testing.T) {
	c := New(testCatalog())
	c.AddProduct(1, "Spritz", price("5.00"), 3)
	c.AddProduct(1, "Spritz", price("5.00"), 3)
	c.AddProduct(2, "Gnocchi", price("3.50"), 10)

	assert.True(t, c.Total().Equal(price("13.50")), "total = %s", c.Total())
	assert.Equal(t, "€13.50", c.Summary().FormattedTotal())
}

func TestTotalIsExactForCents(t *testing.T) {
	c := New(nil)
	for i := 0; i < 3; i++ {
		c.AddProduct(1, "Caffè", price("0.10"), 10)
	}
	assert.True(t, c.Total().Equal(price("0.30")))
}

func TestPayload(t *testing.T) {
	c := New(testCatalog())
	assert.JSONEq(t, `[]`, c.Payload())

	c.AddProduct(2, "Gnocchi", price("3.50"), 10)
	c.AddProduct(2, "Gnocchi", price("3.50"), 10)

	var items []struct {
		ID       int     `json:"id"`
		Nome     string  `json:"nome"`
		Prezzo   float64 `json:"prezzo"`
		Quantita int     `json:"quantita"`
	}
	require.NoError(t, json.Unmarshal([]byte(c.Payload()), &items))
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, "Gnocchi", items[0].Nome)
	assert.Equal(t, 3.5, items[0].Prezzo)
	assert.Equal(t, 2, items[0].Quantita)
}

func TestCardStates(t *testing.T) {
	c := New(testCatalog())

	s, ok := c.Card(1)
	require.True(t, ok)
	assert.Equal(t, CardState{MinusDisabled: true}, s)

	s, _ = c.Card(3)
	assert.True(t, s.PlusDisabled, "out of stock card cannot be added")

	for i := 0; i < 3; i++ {
		c.AddFromCatalog(testCatalog()[0])
	}
	s, _ = c.Card(1)
	assert.Equal(t, CardState{Quantity: 3, Selected: true, PlusDisabled: true}, s)

	row := c.Summary().Rows[0]
	assert.True(t, row.PlusDisabled)
	assert.False(t, row.MinusDisabled)

	c.RemoveOneUnit(1)
	c.RemoveOneUnit(1)
	row = c.Summary().Rows[0]
	assert.False(t, row.PlusDisabled)
	assert.True(t, row.MinusDisabled, "summary minus is disabled at one unit")

	_, ok = c.Card(99)
	assert.False(t, ok)
}

func TestIncreaseLine(t *testing.T) {
	c := New(testCatalog())
	c.IncreaseLine(1)
	assert.Equal(t, 0, c.Quantity(1), "increase never creates a line")

	c.AddFromCatalog(testCatalog()[0])
	for i := 0; i < 5; i++ {
		c.IncreaseLine(1)
	}
	assert.Equal(t, 3, c.Quantity(1))
}

func TestIncreaseLineKeepsCapFromAdd(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		max     int
		incs    int
		wantQty int
	}{
		{name: "product outside the catalog", id: 99, max: 2, incs: 5, wantQty: 2},
		{name: "tighter cap than the catalog card", id: 1, max: 1, incs: 2, wantQty: 1},
		{name: "looser cap than the catalog card", id: 1, max: 5, incs: 6, wantQty: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(testCatalog())
			c.AddProduct(tt.id, "x", price("2.00"), tt.max)
			for i := 0; i < tt.incs; i++ {
				c.IncreaseLine(tt.id)
			}
			assert.Equal(t, tt.wantQty, c.Quantity(tt.id))

			lines := c.Lines()
			require.Len(t, lines, 1)
			assert.Equal(t, tt.max, lines[0].MaxAvailable)
			assert.True(t, c.Summary().Rows[0].PlusDisabled)

			// a later add with a bigger cap does not lift the captured one
			c.AddProduct(tt.id, "x", price("2.00"), tt.max+10)
			assert.Equal(t, tt.wantQty, c.Quantity(tt.id))
		})
	}
}

func TestCardPlusFollowsLineCap(t *testing.T) {
	c := New(testCatalog())
	c.AddProduct(2, "Gnocchi", price("3.50"), 1)

	s, ok := c.Card(2)
	require.True(t, ok)
	assert.Equal(t, CardState{Quantity: 1, Selected: true, PlusDisabled: true}, s)
}

func TestRendererRunsOnEveryMutation(t *testing.T) {
	var renders []Summary
	c := New(testCatalog(), WithRenderer(func(s Summary) { renders = append(renders, s) }))

	c.AddFromCatalog(testCatalog()[0])
	c.AddFromCatalog(testCatalog()[0])
	c.RemoveOneUnit(42)
	c.RemoveLine(1)

	require.Len(t, renders, 4)
	assert.Len(t, renders[1].Rows, 1)
	assert.Equal(t, 2, renders[1].Rows[0].Quantity)
	assert.Empty(t, renders[3].Rows)
}

func TestQuantityBoundsUnderRandomSequences(t *testing.T) {
	catalog := testCatalog()
	rng := rand.New(rand.NewSource(7))
	c := New(catalog)

	for step := 0; step < 2000; step++ {
		p := catalog[rng.Intn(len(catalog))]
		switch rng.Intn(4) {
		case 0, 1:
			c.AddFromCatalog(p)
		case 2:
			c.RemoveOneUnit(p.ID)
		case 3:
			c.IncreaseLine(p.ID)
		}

		seen := map[int]bool{}
		for _, l := range c.Lines() {
			require.False(t, seen[l.ID], "duplicate line for %d", l.ID)
			seen[l.ID] = true
			require.GreaterOrEqual(t, l.Quantity, 1)
			require.LessOrEqual(t, l.Quantity, capFor(catalog, l.ID))
		}
		for _, p := range catalog {
			if !seen[p.ID] {
				require.Equal(t, 0, c.Quantity(p.ID))
			}
		}

		want := decimal.Zero
		for _, l := range c.Lines() {
			want = want.Add(l.Subtotal())
		}
		require.True(t, want.Equal(c.Total()))
	}
}

func capFor(catalog []orders.Product, id int) int {
	for _, p := range catalog {
		if p.ID == id {
			return p.Quantita
		}
	}
	return 0
}

func TestCheckSubmittable(t *testing.T) {
	c := New(testCatalog())
	assert.ErrorIs(t, c.CheckSubmittable(), ErrEmptyCart)

	c.AddFromCatalog(testCatalog()[1])
	assert.NoError(t, c.CheckSubmittable())

	c.Clear()
	assert.ErrorIs(t, c.CheckSubmittable(), ErrEmptyCart)
}
