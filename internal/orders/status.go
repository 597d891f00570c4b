package orders

// Stato is the preparation status of an order for one dashboard category.
type Stato string

const (
	StatoInAttesa       Stato = "In Attesa"
	StatoInPreparazione Stato = "In Preparazione"
	StatoPronto         Stato = "Pronto"
	StatoCompletato     Stato = "Completato"
)

// ordered lifecycle, one step at a time
var sequence = []Stato{StatoInAttesa, StatoInPreparazione, StatoPronto, StatoCompletato}

// Valid reports whether s is one of the known lifecycle statuses.
func (s Stato) Valid() bool {
	for _, st := range sequence {
		if st == s {
			return true
		}
	}
	return false
}

func (s Stato) Terminal() bool { return s == StatoCompletato }

// Next returns the status following s. ok is false when s is terminal or unknown.
func (s Stato) Next() (Stato, bool) {
	for i, st := range sequence {
		if st == s {
			if i == len(sequence)-1 {
				return s, false
			}
			return sequence[i+1], true
		}
	}
	return s, false
}
