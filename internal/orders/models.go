package orders

import "github.com/shopspring/decimal"

// Product is a catalog entry as shown on the cashier screen.
type Product struct {
	ID                 int             `json:"id"`
	Nome               string          `json:"nome"`
	CategoriaMenu      string          `json:"categoria_menu"`
	CategoriaDashboard string          `json:"categoria_dashboard"`
	Prezzo             decimal.Decimal `json:"prezzo"`
	Quantita           int             `json:"quantita"` // available stock
	Disponibile        bool            `json:"disponibile"`
	Venduti            int             `json:"venduti,omitempty"`
}

// Totals is the "totali" block of the statistics endpoint.
type Totals struct {
	OrdiniTotali     int     `json:"ordini_totali"`
	OrdiniCompletati int     `json:"ordini_completati"`
	TotaleIncasso    float64 `json:"totale_incasso"`
	TotaleContanti   float64 `json:"totale_contanti"`
	TotaleCarta      float64 `json:"totale_carta"`
}

type CategoryTotal struct {
	CategoriaDashboard string `json:"categoria_dashboard"`
	Totale             int    `json:"totale"`
}

type HourTotal struct {
	Ora    int `json:"ora"`
	Totale int `json:"totale"`
}

type TopProduct struct {
	Nome    string `json:"nome"`
	Venduti int    `json:"venduti"`
}

// Statistics mirrors GET /api/statistiche/.
type Statistics struct {
	Totali    Totals          `json:"totali"`
	Categorie []CategoryTotal `json:"categorie"`
	Ore       []HourTotal     `json:"ore"`
	Top10     []TopProduct    `json:"top10"`
}

// NonCompletati is the number of orders still open.
func (s Statistics) NonCompletati() int {
	return s.Totali.OrdiniTotali - s.Totali.OrdiniCompletati
}

type DetailItem struct {
	Nome     string          `json:"nome"`
	Quantita int             `json:"quantita"`
	Prezzo   decimal.Decimal `json:"prezzo"`
}

// OrderDetail mirrors GET /api/ordine/{id}.
type OrderDetail struct {
	ID              int          `json:"id"`
	NomeCliente     string       `json:"nome_cliente"`
	NumeroTavolo    *int         `json:"numero_tavolo"`
	NumeroPersone   *int         `json:"numero_persone"`
	MetodoPagamento string       `json:"metodo_pagamento"`
	DataOrdine      string       `json:"data_ordine"`
	Items           []DetailItem `json:"items"`
}

// Total sums prezzo × quantita over the order items.
func (o OrderDetail) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Prezzo.Mul(decimal.NewFromInt(int64(it.Quantita))))
	}
	return total
}
