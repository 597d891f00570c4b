package posapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestChangeStatus(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cambia_stato/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"nuovo_stato":"Pronto","html_non_completati":"<a>","html_completati":""}`)
	}))

	st, err := c.ChangeStatus(context.Background(), 12, "Cucina")
	require.NoError(t, err)
	assert.Equal(t, orders.StatoPronto, st)
	assert.Equal(t, float64(12), got["ordine_id"])
	assert.Equal(t, "Cucina", got["categoria"])
}

func TestChangeStatusServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"errore":"Ordine non trovato"}`)
	}))

	_, err := c.ChangeStatus(context.Background(), 1, "Bar")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Ordine non trovato", apiErr.Message)
	assert.Equal(t, "Errore: Ordine non trovato", UserMessage(err, "x"))
}

func TestTransportError(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = c.Statistics(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, "Errore di connessione.", UserMessage(err, "Errore di connessione."))
}

func TestDashboardPartial(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dashboard/Cucina/partial", r.URL.Path)
		_, _ = io.WriteString(w, `{"html_non_completati":"<div>1</div>","html_completati":"<div>2</div>"}`)
	}))

	p, err := c.DashboardPartial(context.Background(), "Cucina")
	require.NoError(t, err)
	assert.Equal(t, "<div>1</div>", p.HTMLNonCompletati)
	assert.Equal(t, "<div>2</div>", p.HTMLCompletati)
}

func TestStatistics(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/statistiche/", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"totali":{"ordini_totali":5,"ordini_completati":2,"totale_incasso":40.5,"totale_contanti":10,"totale_carta":30.5},
			"categorie":[{"categoria_dashboard":"Bar","totale":7}],
			"ore":[{"ora":12,"totale":5}],
			"top10":[{"nome":"Spritz","venduti":4}]}`)
	}))

	s, err := c.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, s.NonCompletati())
	assert.Equal(t, "Bar", s.Categorie[0].CategoriaDashboard)
	assert.Equal(t, 12, s.Ore[0].Ora)
	assert.Equal(t, "Spritz", s.Top10[0].Nome)
}

func TestHTMLFragments(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/amministrazione/ordini_html":
			_, _ = io.WriteString(w, "<tr>ordini</tr>")
		case "/api/amministrazione/prodotti_html":
			_, _ = io.WriteString(w, "<tr>prodotti</tr>")
		case "/api/ordine/7/dettagli":
			_, _ = io.WriteString(w, "<tr class=riga-dettagli></tr>")
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	s, err := c.OrdersHTML(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<tr>ordini</tr>", s)

	s, err = c.ProductsHTML(ctx)
	require.NoError(t, err)
	assert.Equal(t, "<tr>prodotti</tr>", s)

	s, err = c.OrderDetailsHTML(ctx, 7)
	require.NoError(t, err)
	assert.Contains(t, s, "riga-dettagli")

	_, err = c.OrderDetailsHTML(ctx, 8)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestOrderDetail(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":3,"nome_cliente":"Bianchi","numero_tavolo":null,"numero_persone":null,
			"metodo_pagamento":"Carta","data_ordine":"2025-01-01 12:00:00",
			"items":[{"nome":"Spritz","quantita":2,"prezzo":5.0},{"nome":"Gnocchi","quantita":1,"prezzo":3.5}]}`)
	}))

	d, err := c.OrderDetail(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, d.NumeroTavolo)
	assert.True(t, d.Total().Equal(decimal.RequireFromString("13.5")))
}

func TestSubmitOrder(t *testing.T) {
	var form url.Values
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		http.Redirect(w, r, "/cassa/?last_order_id=42", http.StatusSeeOther)
	}))

	id, err := c.SubmitOrder(context.Background(), url.Values{"prodotti": {`[{"id":1}]`}, "isTakeaway": {"on"}})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.Equal(t, "on", form.Get("isTakeaway"))
}

func TestSubmitOrderWithoutNumber(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	_, err := c.SubmitOrder(context.Background(), url.Values{})
	assert.ErrorIs(t, err, ErrNoOrderNumber)
}

func TestLoginKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "segreta" {
			_, _ = io.WriteString(w, "<html>Username o password errata</html>")
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/api/statistiche/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("session"); err != nil {
			http.Redirect(w, r, "/login/", http.StatusFound)
			return
		}
		_, _ = io.WriteString(w, `{"totali":{"ordini_totali":1}}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	assert.ErrorIs(t, c.Login(ctx, "admin", "sbagliata"), ErrLoginFailed)
	require.NoError(t, c.Login(ctx, "admin", "segreta"))

	s, err := c.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Totali.OrdiniTotali)
}
