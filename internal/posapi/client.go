// Package posapi is the HTTP client for the POS server: statistics, partial HTML refreshes,
// order submission, status changes and the back-office CRUD endpoints.
package posapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/google/uuid"
)

var (
	ErrLoginFailed   = errors.New("login rejected")
	ErrNoOrderNumber = errors.New("order accepted without an order number")
)

type Client struct {
	base *url.URL
	hc   *http.Client
	log  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for the server at baseURL. The client keeps the session cookie set
// by Login and never follows redirects, so form posts can read their Location.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		base: u,
		hc:   &http.Client{Jar: jar},
		log:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.hc.Jar == nil {
		c.hc.Jar = jar
	}
	c.hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return c, nil
}

// Login opens a session. The server answers a redirect on success and re-renders the
// login page otherwise.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}
	resp, err := c.postForm(ctx, "/login/", form)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return nil
	}
	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}
	return ErrLoginFailed
}

// StatusChange is the answer of POST /cambia_stato/.
type StatusChange struct {
	NuovoStato        orders.Stato `json:"nuovo_stato"`
	HTMLNonCompletati string       `json:"html_non_completati"`
	HTMLCompletati    string       `json:"html_completati"`
}

type changeStatusReq struct {
	OrdineID  int    `json:"ordine_id"`
	Categoria string `json:"categoria"`
}

// ChangeStatusFull asks the server to advance an order for one category.
func (c *Client) ChangeStatusFull(ctx context.Context, orderID int, categoria string) (StatusChange, error) {
	var out StatusChange
	err := c.doJSON(ctx, http.MethodPost, "/cambia_stato/", changeStatusReq{OrdineID: orderID, Categoria: categoria}, &out)
	return out, err
}

// ChangeStatus returns only the status the server settled on.
func (c *Client) ChangeStatus(ctx context.Context, orderID int, categoria string) (orders.Stato, error) {
	out, err := c.ChangeStatusFull(ctx, orderID, categoria)
	if err != nil {
		return "", err
	}
	return out.NuovoStato, nil
}

// Partial holds the two server-rendered order lists of a dashboard.
type Partial struct {
	HTMLNonCompletati string `json:"html_non_completati"`
	HTMLCompletati    string `json:"html_completati"`
}

func (c *Client) DashboardPartial(ctx context.Context, categoria string) (Partial, error) {
	var out Partial
	err := c.doJSON(ctx, http.MethodGet, "/dashboard/"+url.PathEscape(categoria)+"/partial", nil, &out)
	return out, err
}

func (c *Client) Statistics(ctx context.Context) (orders.Statistics, error) {
	var out orders.Statistics
	err := c.doJSON(ctx, http.MethodGet, "/api/statistiche/", nil, &out)
	return out, err
}

func (c *Client) OrdersHTML(ctx context.Context) (string, error) {
	return c.getText(ctx, "/api/amministrazione/ordini_html")
}

func (c *Client) ProductsHTML(ctx context.Context) (string, error) {
	return c.getText(ctx, "/api/amministrazione/prodotti_html")
}

func (c *Client) OrderDetailsHTML(ctx context.Context, orderID int) (string, error) {
	return c.getText(ctx, "/api/ordine/"+strconv.Itoa(orderID)+"/dettagli")
}

func (c *Client) OrderDetail(ctx context.Context, orderID int) (orders.OrderDetail, error) {
	var out orders.OrderDetail
	err := c.doJSON(ctx, http.MethodGet, "/api/ordine/"+strconv.Itoa(orderID), nil, &out)
	return out, err
}

// SubmitOrder posts the order form and returns the number of the created order, read
// from the redirect back to the cashier screen.
func (c *Client) SubmitOrder(ctx context.Context, form url.Values) (int, error) {
	resp, err := c.postForm(ctx, "/aggiungi_ordine/", form)
	if err != nil {
		return 0, err
	}
	defer drain(resp)
	if resp.StatusCode >= 400 {
		return 0, newAPIError(resp)
	}

	loc, err := resp.Location()
	if err != nil {
		return 0, ErrNoOrderNumber
	}
	id, err := strconv.Atoi(loc.Query().Get("last_order_id"))
	if err != nil {
		return 0, ErrNoOrderNumber
	}
	return id, nil
}

func (c *Client) getText(ctx context.Context, path string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	if resp.StatusCode/100 != 2 {
		return "", newAPIError(resp)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	ctype := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		ctype = "application/json"
	}
	req, err := c.newRequest(ctx, method, path, body, ctype)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer drain(resp)
	if resp.StatusCode/100 != 2 {
		return newAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, ctype string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, err
	}
	if ctype != "" {
		req.Header.Set("Content-Type", ctype)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Error("pos api request failed",
			"method", req.Method, "path", req.URL.Path, "request_id", req.Header.Get("X-Request-Id"), "err", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	c.log.Debug("pos api request",
		"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
