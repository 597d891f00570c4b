package cart

import (
	"errors"
	"net/url"
	"strings"
	"sync"
)

const (
	FieldNomeCliente     = "nome_cliente"
	FieldNumeroTavolo    = "numero_tavolo"
	FieldNumeroPersone   = "numero_persone"
	FieldMetodoPagamento = "metodo_pagamento"
	FieldTakeaway        = "isTakeaway"
	FieldProdotti        = "prodotti"
)

var ErrMissingField = errors.New("missing required field")

// OrderForm holds the auxiliary fields submitted with the cart.
//
// In takeaway mode the table number and party size are cleared and no longer required.
type OrderForm struct {
	mu sync.Mutex

	takeaway        bool
	nomeCliente     string
	numeroTavolo    string
	numeroPersone   string
	metodoPagamento string
	required        map[string]bool
}

func NewOrderForm() *OrderForm {
	f := &OrderForm{metodoPagamento: "Contanti"}
	f.SetTakeaway(false)
	return f
}

// SetTakeaway toggles takeaway mode.
func (f *OrderForm) SetTakeaway(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.takeaway = on
	if on {
		f.numeroTavolo = ""
		f.numeroPersone = ""
		f.required = map[string]bool{}
		return
	}
	f.required = map[string]bool{FieldNumeroTavolo: true, FieldNumeroPersone: true}
}

func (f *OrderForm) Takeaway() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.takeaway
}

func (f *OrderForm) Required(field string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.required[field]
}

func (f *OrderForm) SetNomeCliente(v string) {
	f.mu.Lock()
	f.nomeCliente = v
	f.mu.Unlock()
}

func (f *OrderForm) SetNumeroTavolo(v string) {
	f.mu.Lock()
	f.numeroTavolo = v
	f.mu.Unlock()
}

func (f *OrderForm) SetNumeroPersone(v string) {
	f.mu.Lock()
	f.numeroPersone = v
	f.mu.Unlock()
}

func (f *OrderForm) SetMetodoPagamento(v string) {
	f.mu.Lock()
	f.metodoPagamento = v
	f.mu.Unlock()
}

func (f *OrderForm) NumeroTavolo() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.numeroTavolo
}

func (f *OrderForm) NumeroPersone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.numeroPersone
}

// FieldError names the required field left blank. It matches ErrMissingField.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return ErrMissingField.Error() + ": " + e.Field }

func (e *FieldError) Is(target error) bool { return target == ErrMissingField }

// Validate reports the first required field left blank.
func (f *OrderForm) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, field := range []string{FieldNumeroTavolo, FieldNumeroPersone} {
		if !f.required[field] {
			continue
		}
		if strings.TrimSpace(f.value(field)) == "" {
			return &FieldError{Field: field}
		}
	}
	return nil
}

// Values encodes the form together with the cart payload, as posted to /aggiungi_ordine/.
func (f *OrderForm) Values(payload string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := url.Values{}
	if f.takeaway {
		v.Set(FieldTakeaway, "on")
	}
	v.Set(FieldNomeCliente, f.nomeCliente)
	v.Set(FieldNumeroTavolo, f.numeroTavolo)
	v.Set(FieldNumeroPersone, f.numeroPersone)
	v.Set(FieldMetodoPagamento, f.metodoPagamento)
	v.Set(FieldProdotti, payload)
	return v
}

// Reset clears the customer fields and leaves takeaway mode.
func (f *OrderForm) Reset() {
	f.mu.Lock()
	f.nomeCliente = ""
	f.numeroTavolo = ""
	f.numeroPersone = ""
	f.metodoPagamento = "Contanti"
	f.mu.Unlock()
	f.SetTakeaway(false)
}

func (f *OrderForm) value(field string) string {
	switch field {
	case FieldNumeroTavolo:
		return f.numeroTavolo
	case FieldNumeroPersone:
		return f.numeroPersone
	}
	return ""
}
