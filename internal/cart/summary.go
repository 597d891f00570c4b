package cart

import "github.com/shopspring/decimal"

// Row is one line of the order summary, with the state of its +/- buttons.
type Row struct {
	ID            int
	Name          string
	Quantity      int
	Subtotal      decimal.Decimal
	PlusDisabled  bool
	MinusDisabled bool
}

// Summary is the rebuilt order summary: rows in insertion order plus the total.
type Summary struct {
	Rows  []Row
	Total decimal.Decimal
}

func (s Summary) clone() Summary {
	rows := make([]Row, len(s.Rows))
	copy(rows, s.Rows)
	return Summary{Rows: rows, Total: s.Total}
}

// FormattedTotal renders the total as shown on the till, e.g. "€13.50".
func (s Summary) FormattedTotal() string {
	return "€" + s.Total.StringFixed(2)
}

// CardState is what a catalog card displays for its product.
type CardState struct {
	Quantity      int
	Selected      bool
	PlusDisabled  bool
	MinusDisabled bool
}
