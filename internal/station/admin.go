package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ariefcatur/resto-pos/internal/debounce"
	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/posapi"
)

const DefaultAdminDebounce = 300 * time.Millisecond

// AdminAPI is the server surface of the back-office. *posapi.Client implements it.
type AdminAPI interface {
	Statistics(ctx context.Context) (orders.Statistics, error)
	OrdersHTML(ctx context.Context) (string, error)
	ProductsHTML(ctx context.Context) (string, error)

	OrderDetail(ctx context.Context, orderID int) (orders.OrderDetail, error)
	OrderDetailsHTML(ctx context.Context, orderID int) (string, error)

	RestockProduct(ctx context.Context, id, quantita int) error
	UpdateProduct(ctx context.Context, p posapi.ProductUpdate) error
	DeleteProduct(ctx context.Context, id int) error
	AddProduct(ctx context.Context, p posapi.NewProduct) error
	UpdateOrder(ctx context.Context, o posapi.OrderUpdate) error
	DeleteOrder(ctx context.Context, id int) error
	UpdateUser(ctx context.Context, u posapi.UserUpdate) error
	AddUser(ctx context.Context, u posapi.NewUser) error
	DeleteUser(ctx context.Context, id int) error
}

// AdminSnapshot is what the back-office currently shows.
type AdminSnapshot struct {
	Stats        orders.Statistics
	OrdersHTML   string
	ProductsHTML string
	RefreshedAt  time.Time
}

type AdminOption func(*Admin)

func WithDebounce(window time.Duration) AdminOption {
	return func(a *Admin) { a.window = window }
}

// OnRefresh is called with the snapshot after every refresh.
func OnRefresh(fn func(AdminSnapshot)) AdminOption {
	return func(a *Admin) { a.onRefresh = fn }
}

// Admin is the back-office session. Every realtime notification schedules one trailing
// refresh of statistics, orders and products; a burst of notifications yields one refresh.
type Admin struct {
	api       AdminAPI
	alert     Alerter
	window    time.Duration
	deb       *debounce.Debouncer
	onRefresh func(AdminSnapshot)
	log       *slog.Logger

	mu   sync.RWMutex
	ctx  context.Context
	snap AdminSnapshot
}

func NewAdmin(api AdminAPI, alert Alerter, log *slog.Logger, opts ...AdminOption) *Admin {
	if log == nil {
		log = slog.Default()
	}
	a := &Admin{api: api, alert: alert, window: DefaultAdminDebounce, log: log, ctx: context.Background()}
	for _, o := range opts {
		o(a)
	}
	a.deb = debounce.New(a.window, func() {
		a.mu.RLock()
		ctx := a.ctx
		a.mu.RUnlock()
		_ = a.Refresh(ctx)
	})
	return a
}

func (a *Admin) Snapshot() AdminSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Refresh reloads the three panels independently; a failed panel keeps its last content.
func (a *Admin) Refresh(ctx context.Context) error {
	var errs []error

	stats, err := a.api.Statistics(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("statistics: %w", err))
	}
	ordersHTML, oerr := a.api.OrdersHTML(ctx)
	if oerr != nil {
		errs = append(errs, fmt.Errorf("orders table: %w", oerr))
	}
	productsHTML, perr := a.api.ProductsHTML(ctx)
	if perr != nil {
		errs = append(errs, fmt.Errorf("products table: %w", perr))
	}

	a.mu.Lock()
	if err == nil {
		a.snap.Stats = stats
	}
	if oerr == nil {
		a.snap.OrdersHTML = ordersHTML
	}
	if perr == nil {
		a.snap.ProductsHTML = productsHTML
	}
	a.snap.RefreshedAt = time.Now()
	snap := a.snap
	a.mu.Unlock()

	if len(errs) > 0 {
		a.log.Error("admin refresh", "err", errors.Join(errs...))
	} else {
		a.log.Debug("admin refreshed",
			"ordini_totali", snap.Stats.Totali.OrdiniTotali,
			"non_completati", snap.Stats.NonCompletati())
	}
	if a.onRefresh != nil {
		a.onRefresh(snap)
	}
	return errors.Join(errs...)
}

// HandleFrame schedules a refresh on any aggiorna_dashboard, whatever its category.
func (a *Admin) HandleFrame(f orders.Frame) bool {
	if f.Event != orders.EventAggiornaDashboard {
		return false
	}
	a.deb.Trigger()
	return true
}

// RefreshPending reports whether a debounced refresh is scheduled.
func (a *Admin) RefreshPending() bool { return a.deb.Pending() }

// Run joins the back-office room and follows it until ctx ends or the connection drops.
// A pending refresh is dropped on return.
func (a *Admin) Run(ctx context.Context, rc RoomClient) error {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()
	defer a.deb.Stop()

	if err := rc.Join(orders.RoomAmministrazione); err != nil {
		return fmt.Errorf("join %q: %w", orders.RoomAmministrazione, err)
	}
	a.log.Info("admin joined room", "room", orders.RoomAmministrazione)
	return rc.Listen(ctx, func(f orders.Frame) { a.HandleFrame(f) })
}
