package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ariefcatur/resto-pos/internal/cart"
	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/posapi"
)

const submitFailedMessage = "Errore durante l'invio dell'ordine."

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, form url.Values) (int, error)
}

// Cashier is one order-entry session: the cart, the customer form and the submit guard.
type Cashier struct {
	Cart *cart.Cart
	Form *cart.OrderForm

	api   OrderSubmitter
	alert Alerter
	log   *slog.Logger
}

func NewCashier(catalog []orders.Product, api OrderSubmitter, alert Alerter, log *slog.Logger, opts ...cart.Option) *Cashier {
	if log == nil {
		log = slog.Default()
	}
	return &Cashier{
		Cart:  cart.New(catalog, opts...),
		Form:  cart.NewOrderForm(),
		api:   api,
		alert: alert,
		log:   log,
	}
}

// Submit sends the order and starts a fresh one. An empty cart or a missing required field
// is reported to the operator and nothing is sent.
func (c *Cashier) Submit(ctx context.Context) (int, error) {
	if err := c.Cart.CheckSubmittable(); err != nil {
		c.alert.Alert(cart.EmptyCartMessage)
		return 0, err
	}
	if err := c.Form.Validate(); err != nil {
		c.alert.Alert(missingFieldMessage(err))
		return 0, err
	}

	id, err := c.api.SubmitOrder(ctx, c.Form.Values(c.Cart.Payload()))
	if err != nil {
		c.log.Error("submit order", "lines", c.Cart.Len(), "total", c.Cart.Total().StringFixed(2), "err", err)
		c.alert.Alert(posapi.UserMessage(err, submitFailedMessage))
		return 0, fmt.Errorf("submit order: %w", err)
	}

	c.log.Info("order submitted", "order_id", id, "total", c.Cart.Total().StringFixed(2))
	c.Cart.Clear()
	c.Form.Reset()
	return id, nil
}

func missingFieldMessage(err error) string {
	var fe *cart.FieldError
	if !errors.As(err, &fe) {
		return "Compila tutti i campi obbligatori."
	}
	return "Compila il campo obbligatorio: " + strings.ReplaceAll(fe.Field, "_", " ") + "."
}
