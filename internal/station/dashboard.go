package station

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/posapi"
	"github.com/ariefcatur/resto-pos/internal/statussync"
)

const statusFailedMessage = "Impossibile aggiornare lo stato dell'ordine."

type DashboardAPI interface {
	statussync.StatusChanger
	DashboardPartial(ctx context.Context, categoria string) (posapi.Partial, error)
}

// Dashboard is one kitchen/bar screen: its category room, the two order lists and the
// board of status cards.
type Dashboard struct {
	category string
	api      DashboardAPI
	board    *statussync.Board
	alert    Alerter
	log      *slog.Logger

	mu        sync.RWMutex
	fragments posapi.Partial
}

// NewDashboard derives the category from the page heading, e.g. "Dashboard Cucina".
func NewDashboard(heading string, api DashboardAPI, alert Alerter, log *slog.Logger, opts ...statussync.Option) *Dashboard {
	if log == nil {
		log = slog.Default()
	}
	category := orders.CategoryFromHeading(heading)
	log = log.With("categoria", category)
	opts = append([]statussync.Option{statussync.WithLogger(log)}, opts...)
	return &Dashboard{
		category: category,
		api:      api,
		board:    statussync.NewBoard(api, opts...),
		alert:    alert,
		log:      log,
	}
}

func (d *Dashboard) Category() string { return d.category }

func (d *Dashboard) Board() *statussync.Board { return d.board }

// Fragments returns the last server-rendered lists: open orders, then completed ones.
func (d *Dashboard) Fragments() posapi.Partial {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fragments
}

// Refresh reloads both lists and replaces the cards on the board. On failure the screen
// keeps what it had.
func (d *Dashboard) Refresh(ctx context.Context) error {
	p, err := d.api.DashboardPartial(ctx, d.category)
	if err != nil {
		d.log.Error("dashboard refresh", "err", err)
		return fmt.Errorf("refresh %s: %w", d.category, err)
	}
	cards, err := ParseCards(p.HTMLNonCompletati, p.HTMLCompletati)
	if err != nil {
		d.log.Error("dashboard refresh", "err", err)
		return err
	}
	d.mu.Lock()
	d.fragments = p
	d.mu.Unlock()
	d.board.Replace(cards)
	d.log.Debug("dashboard refreshed", "cards", len(cards))
	return nil
}

// Advance moves an order one status forward. A rolled back change is reported to the operator.
func (d *Dashboard) Advance(ctx context.Context, orderID int) statussync.Outcome {
	out := d.board.Advance(ctx, orderID)
	d.report(out)
	return out
}

// AdvanceAsync shows the predicted status before returning; the channel yields the Outcome
// once the server has answered and any rollback has been reported.
func (d *Dashboard) AdvanceAsync(ctx context.Context, orderID int) <-chan statussync.Outcome {
	src := d.board.AdvanceAsync(ctx, orderID)
	res := make(chan statussync.Outcome, 1)
	go func() {
		out := <-src
		d.report(out)
		res <- out
		close(res)
	}()
	return res
}

func (d *Dashboard) report(out statussync.Outcome) {
	if out.RolledBack {
		d.alert.Alert(posapi.UserMessage(out.Err, statusFailedMessage))
	}
}

// HandleFrame refreshes on an aggiorna_dashboard for this category and reports whether it did.
func (d *Dashboard) HandleFrame(ctx context.Context, f orders.Frame) bool {
	if f.Event != orders.EventAggiornaDashboard {
		return false
	}
	p, err := f.Payload()
	if err != nil {
		d.log.Warn("bad realtime frame", "err", err)
		return false
	}
	if p.Categoria != d.category {
		return false
	}
	_ = d.Refresh(ctx)
	return true
}

// Run joins the category room and follows it until ctx ends or the connection drops.
func (d *Dashboard) Run(ctx context.Context, rc RoomClient) error {
	if err := rc.Join(d.category); err != nil {
		return fmt.Errorf("join %q: %w", d.category, err)
	}
	d.log.Info("dashboard joined room")
	return rc.Listen(ctx, func(f orders.Frame) { d.HandleFrame(ctx, f) })
}
