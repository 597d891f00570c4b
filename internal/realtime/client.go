package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/gorilla/websocket"
)

var ErrRoomRequired = errors.New("room name required")

// Client is a screen's connection to the relay.
type Client struct {
	ws  *websocket.Conn
	wmu sync.Mutex
	log *slog.Logger
}

// Dial connects to the relay websocket at url (ws:// or wss://).
func Dial(ctx context.Context, url string, header http.Header, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial relay %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}
	return &Client{ws: ws, log: log}, nil
}

// Join asks the relay to add this screen to a room.
func (c *Client) Join(room string) error {
	if room == "" {
		return ErrRoomRequired
	}
	return c.send(orders.NewFrame(orders.EventJoin, room))
}

func (c *Client) send(f orders.Frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.ws.WriteJSON(f); err != nil {
		return fmt.Errorf("send %s: %w", f.Event, err)
	}
	return nil
}

// Listen hands every received frame to fn until ctx ends or the connection drops.
// A cancelled ctx returns nil.
func (c *Client) Listen(ctx context.Context, fn func(orders.Frame)) error {
	stop := context.AfterFunc(ctx, func() { _ = c.ws.Close() })
	defer stop()

	for {
		var f orders.Frame
		if err := c.ws.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read relay: %w", err)
		}
		c.log.Debug("relay frame", "event", f.Event)
		fn(f)
	}
}

// Close sends a close frame and drops the connection.
func (c *Client) Close() error {
	c.wmu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.wmu.Unlock()
	return c.ws.Close()
}
