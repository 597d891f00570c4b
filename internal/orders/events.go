package orders

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventJoin              = "join"
	EventAggiornaDashboard = "aggiorna_dashboard"
)

// Frame is one realtime message exchanged with a connected screen.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomPayload is the data of both "join" and "aggiorna_dashboard".
// An empty Categoria on aggiorna_dashboard means a global notification.
type RoomPayload struct {
	Categoria string `json:"categoria,omitempty"`
}

// Envelope carries a frame between relay instances over the bus.
type Envelope struct {
	EventID    string    `json:"event_id"` // uuid
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Producer   string    `json:"producer"`
	Room       string    `json:"room,omitempty"` // empty -> every connection
	Categoria  string    `json:"categoria,omitempty"`
}

// Frame builds the frame delivered to screens for this envelope.
func (e Envelope) Frame() Frame {
	return NewFrame(e.EventType, e.Categoria)
}

// Payload decodes the frame data. A frame without data yields an empty payload.
func (f Frame) Payload() (RoomPayload, error) {
	var p RoomPayload
	if len(f.Data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(f.Data, &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w", f.Event, err)
	}
	return p, nil
}

// NewFrame builds a frame carrying a room payload.
func NewFrame(event, categoria string) Frame {
	data, _ := json.Marshal(RoomPayload{Categoria: categoria})
	return Frame{Event: event, Data: data}
}
