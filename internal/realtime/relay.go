package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/google/uuid"
)

// Relay joins a Hub to a Bus: emitted events travel over the bus and every instance
// broadcasts what it receives to its own screens.
type Relay struct {
	hub     *Hub
	bus     Bus
	service string
	log     *slog.Logger
}

func NewRelay(hub *Hub, bus Bus, service string, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{hub: hub, bus: bus, service: service, log: log}
}

func (r *Relay) Hub() *Hub { return r.hub }

// Start subscribes the hub to the bus.
func (r *Relay) Start(ctx context.Context) error {
	return r.bus.Subscribe(ctx, func(env orders.Envelope) {
		n := r.hub.Broadcast(env.Room, env.Frame())
		r.log.Debug("event delivered", "event_id", env.EventID, "room", env.Room, "screens", n)
	})
}

// Emit publishes an event for room. An empty room notifies every screen.
func (r *Relay) Emit(ctx context.Context, event, room, categoria string) (orders.Envelope, error) {
	if event == "" {
		event = orders.EventAggiornaDashboard
	}
	env := orders.Envelope{
		EventID:    uuid.NewString(),
		EventType:  event,
		OccurredAt: time.Now().UTC(),
		Producer:   r.service,
		Room:       room,
		Categoria:  categoria,
	}
	if err := r.bus.Publish(ctx, env); err != nil {
		r.log.Warn("emit failed", "event", event, "room", room, "err", err)
		return env, err
	}
	return env, nil
}
