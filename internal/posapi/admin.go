package posapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

type RestockReq struct {
	ID       int `json:"id"`
	Quantita int `json:"quantita"`
}

type ProductUpdate struct {
	ID                 int    `json:"id"`
	Nome               string `json:"nome"`
	CategoriaDashboard string `json:"categoria_dashboard"`
	Quantita           int    `json:"quantita"`
	Disponibile        bool   `json:"disponibile"`
}

type NewProduct struct {
	Nome               string          `json:"nome"`
	CategoriaDashboard string          `json:"categoria_dashboard"`
	CategoriaMenu      string          `json:"categoria_menu"`
	Prezzo             decimal.Decimal `json:"prezzo"`
	Quantita           int             `json:"quantita"`
	Disponibile        bool            `json:"disponibile"`
}

// MarshalJSON sends prezzo as a JSON number, as the back-office form does.
func (p NewProduct) MarshalJSON() ([]byte, error) {
	type wire NewProduct
	return json.Marshal(struct {
		wire
		Prezzo json.Number `json:"prezzo"`
	}{wire: wire(p), Prezzo: json.Number(p.Prezzo.String())})
}

type OrderUpdate struct {
	IDOrdine        int    `json:"id_ordine"`
	NomeCliente     string `json:"nome_cliente"`
	NumeroTavolo    string `json:"numero_tavolo"`
	NumeroPersone   string `json:"numero_persone"`
	MetodoPagamento string `json:"metodo_pagamento"`
}

type UserUpdate struct {
	IDUtente int      `json:"id_utente"`
	Username string   `json:"username"`
	Password string   `json:"password,omitempty"`
	IsAdmin  bool     `json:"is_admin"`
	Attivo   bool     `json:"attivo"`
	Permessi []string `json:"permessi"`
}

type NewUser struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	IsAdmin  bool     `json:"is_admin"`
	Attivo   bool     `json:"attivo"`
	Permessi []string `json:"permessi"`
}

type idReq struct {
	ID int `json:"id"`
}

type userIDReq struct {
	IDUtente int `json:"id_utente"`
}

func (c *Client) RestockProduct(ctx context.Context, id, quantita int) error {
	return c.doJSON(ctx, http.MethodPost, "/api/rifornisci_prodotto", RestockReq{ID: id, Quantita: quantita}, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, p ProductUpdate) error {
	return c.doJSON(ctx, http.MethodPost, "/api/modifica_prodotto", p, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPost, "/api/elimina_prodotto", idReq{ID: id}, nil)
}

func (c *Client) AddProduct(ctx context.Context, p NewProduct) error {
	return c.doJSON(ctx, http.MethodPost, "/api/aggiungi_prodotto", p, nil)
}

func (c *Client) UpdateOrder(ctx context.Context, o OrderUpdate) error {
	return c.doJSON(ctx, http.MethodPost, "/api/modifica_ordine", o, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPost, "/api/elimina_ordine", idReq{ID: id}, nil)
}

func (c *Client) UpdateUser(ctx context.Context, u UserUpdate) error {
	u.Permessi = unique(u.Permessi)
	return c.doJSON(ctx, http.MethodPost, "/api/modifica_utente", u, nil)
}

func (c *Client) AddUser(ctx context.Context, u NewUser) error {
	return c.doJSON(ctx, http.MethodPost, "/api/aggiungi_utente", u, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodPost, "/api/elimina_utente", userIDReq{IDUtente: id}, nil)
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
