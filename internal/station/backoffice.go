package station

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/posapi"
)

const (
	connectionErrorMessage = "Errore di connessione."
	orderDetailsMessage    = "Impossibile caricare i dettagli dell'ordine."
)

// action describes how a failed back-office call is reported. Actions with serverText show
// the server's "errore" field, falling back to "Errore: " + fallback.
type action struct {
	name       string
	fallback   string
	serverText bool
}

var (
	actRestock       = action{name: "restock product", fallback: "Errore durante il rifornimento."}
	actUpdateProduct = action{name: "update product", fallback: "Errore durante la modifica."}
	actDeleteProduct = action{name: "delete product", fallback: "Errore durante l'eliminazione."}
	actAddProduct    = action{name: "add product", fallback: "Impossibile aggiungere prodotto", serverText: true}
	actUpdateOrder   = action{name: "update order", fallback: "Impossibile modificare ordine", serverText: true}
	actDeleteOrder   = action{name: "delete order", fallback: "Errore durante l'eliminazione dell'ordine."}
	actUpdateUser    = action{name: "update user", fallback: "Impossibile modificare utente", serverText: true}
	actAddUser       = action{name: "add user", fallback: "Impossibile aggiungere utente", serverText: true}
	actDeleteUser    = action{name: "delete user", fallback: "Impossibile eliminare utente", serverText: true}
)

func (act action) message(err error) string {
	var apiErr *posapi.APIError
	if !errors.As(err, &apiErr) {
		return connectionErrorMessage
	}
	if act.serverText {
		return posapi.UserMessage(err, "Errore: "+act.fallback)
	}
	return act.fallback
}

// run performs one back-office change. A failure is shown to the operator; a success
// reloads the panels right away.
func (a *Admin) run(ctx context.Context, act action, attrs []any, call func(context.Context) error) error {
	if err := call(ctx); err != nil {
		a.log.Error(act.name, append(attrs, "err", err)...)
		a.alert.Alert(act.message(err))
		return fmt.Errorf("%s: %w", act.name, err)
	}
	a.log.Info(act.name, attrs...)
	_ = a.Refresh(ctx)
	return nil
}

func (a *Admin) RestockProduct(ctx context.Context, id, quantita int) error {
	return a.run(ctx, actRestock, []any{"prodotto_id", id, "quantita", quantita}, func(ctx context.Context) error {
		return a.api.RestockProduct(ctx, id, quantita)
	})
}

func (a *Admin) UpdateProduct(ctx context.Context, p posapi.ProductUpdate) error {
	return a.run(ctx, actUpdateProduct, []any{"prodotto_id", p.ID}, func(ctx context.Context) error {
		return a.api.UpdateProduct(ctx, p)
	})
}

func (a *Admin) DeleteProduct(ctx context.Context, id int) error {
	return a.run(ctx, actDeleteProduct, []any{"prodotto_id", id}, func(ctx context.Context) error {
		return a.api.DeleteProduct(ctx, id)
	})
}

func (a *Admin) AddProduct(ctx context.Context, p posapi.NewProduct) error {
	return a.run(ctx, actAddProduct, []any{"nome", p.Nome}, func(ctx context.Context) error {
		return a.api.AddProduct(ctx, p)
	})
}

func (a *Admin) UpdateOrder(ctx context.Context, o posapi.OrderUpdate) error {
	return a.run(ctx, actUpdateOrder, []any{"order_id", o.IDOrdine}, func(ctx context.Context) error {
		return a.api.UpdateOrder(ctx, o)
	})
}

func (a *Admin) DeleteOrder(ctx context.Context, id int) error {
	return a.run(ctx, actDeleteOrder, []any{"order_id", id}, func(ctx context.Context) error {
		return a.api.DeleteOrder(ctx, id)
	})
}

func (a *Admin) UpdateUser(ctx context.Context, u posapi.UserUpdate) error {
	return a.run(ctx, actUpdateUser, []any{"utente_id", u.IDUtente}, func(ctx context.Context) error {
		return a.api.UpdateUser(ctx, u)
	})
}

func (a *Admin) AddUser(ctx context.Context, u posapi.NewUser) error {
	return a.run(ctx, actAddUser, []any{"username", u.Username}, func(ctx context.Context) error {
		return a.api.AddUser(ctx, u)
	})
}

func (a *Admin) DeleteUser(ctx context.Context, id int) error {
	return a.run(ctx, actDeleteUser, []any{"utente_id", id}, func(ctx context.Context) error {
		return a.api.DeleteUser(ctx, id)
	})
}

// OrderDetails loads an order for the detail view: the server-rendered rows and the
// structured record used by the edit form.
func (a *Admin) OrderDetails(ctx context.Context, orderID int) (string, orders.OrderDetail, error) {
	html, err := a.api.OrderDetailsHTML(ctx, orderID)
	if err != nil {
		a.log.Error("order details", "order_id", orderID, "err", err)
		a.alert.Alert(orderDetailsMessage)
		return "", orders.OrderDetail{}, fmt.Errorf("order %d details: %w", orderID, err)
	}
	detail, err := a.api.OrderDetail(ctx, orderID)
	if err != nil {
		a.log.Error("order detail", "order_id", orderID, "err", err)
		a.alert.Alert(orderDetailsMessage)
		return "", orders.OrderDetail{}, fmt.Errorf("order %d: %w", orderID, err)
	}
	return html, detail, nil
}
