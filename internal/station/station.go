// Package station holds the per-screen session objects: the cashier, a kitchen/bar dashboard
// and the back-office. Each one owns its engines and talks to the server through posapi and
// to the relay through a RoomClient.
package station

import (
	"context"

	"github.com/ariefcatur/resto-pos/internal/orders"
)

// Alerter shows a blocking message to the operator.
type Alerter interface {
	Alert(msg string)
}

type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) { f(msg) }

// RoomClient is a relay connection. *realtime.Client implements it.
type RoomClient interface {
	Join(room string) error
	Listen(ctx context.Context, fn func(orders.Frame)) error
}
