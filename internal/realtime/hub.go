// Package realtime fans dashboard notifications out to connected screens. Screens join a
// room named after their category; the back-office joins "amministrazione" and sees the
// traffic of every room.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

type conn struct {
	id    string
	ws    *websocket.Conn
	send  chan []byte
	rooms map[string]bool // guarded by Hub.mu
	once  sync.Once
}

func (c *conn) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks websocket connections and their rooms.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*conn
	rooms    map[string]map[string]*conn
	upgrader websocket.Upgrader
	log      *slog.Logger
}

type HubOption func(*Hub)

func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) { h.log = l }
}

// WithAllowedOrigins restricts the websocket handshake to the given origins.
// "*" or an empty list accepts any origin.
func WithAllowedOrigins(origins ...string) HubOption {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if len(origins) == 0 || origin == "" {
				return true
			}
			for _, o := range origins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		conns: make(map[string]*conn),
		rooms: make(map[string]map[string]*conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: slog.Default(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ServeWS upgrades the request and serves the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
		return
	}
	c := &conn{
		id:    uuid.NewString(),
		ws:    ws,
		send:  make(chan []byte, sendBuffer),
		rooms: make(map[string]bool),
	}
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	h.log.Debug("screen connected", "conn_id", c.id, "remote", r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

// join adds the connection to a room. An empty room is ignored.
func (h *Hub) join(c *conn, room string) {
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c.id]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*conn)
		h.rooms[room] = members
	}
	members[c.id] = c
	c.rooms[room] = true
	h.log.Info("screen joined room", "conn_id", c.id, "room", room)
}

func (h *Hub) leave(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[c.id]; !ok {
		return
	}
	delete(h.conns, c.id)
	for room := range c.rooms {
		delete(h.rooms[room], c.id)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	c.close()
}

// Broadcast delivers f to every member of room and to the back-office room.
// An empty room reaches every connection. It returns the number of connections reached.
func (h *Hub) Broadcast(room string, f orders.Frame) int {
	b, err := json.Marshal(f)
	if err != nil {
		h.log.Error("encode frame", "event", f.Event, "err", err)
		return 0
	}

	// send under the read lock: channels are only closed under the write lock
	h.mu.RLock()
	targets := make(map[string]*conn)
	if room == "" {
		for id, c := range h.conns {
			targets[id] = c
		}
	} else {
		for id, c := range h.rooms[room] {
			targets[id] = c
		}
		for id, c := range h.rooms[orders.RoomAmministrazione] {
			targets[id] = c
		}
	}
	n := 0
	var slow []*conn
	for _, c := range targets {
		select {
		case c.send <- b:
			n++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow screen", "conn_id", c.id)
		h.leave(c)
	}
	return n
}

// RoomStat is the membership of one room.
type RoomStat struct {
	Room    string `json:"room"`
	Members int    `json:"members"`
}

// Rooms reports room membership sorted by room name.
func (h *Hub) Rooms() []RoomStat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]RoomStat, 0, len(h.rooms))
	for room, members := range h.rooms {
		out = append(out, RoomStat{Room: room, Members: len(members)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Room < out[j].Room })
	return out
}

// Connections is the number of open screens.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every screen.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.leave(c)
	}
}

func (h *Hub) readPump(c *conn) {
	defer func() {
		h.leave(c)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(4096)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f orders.Frame
		if err := c.ws.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("screen read failed", "conn_id", c.id, "err", err)
			}
			return
		}
		switch f.Event {
		case orders.EventJoin:
			p, err := f.Payload()
			if err != nil {
				h.log.Warn("bad join frame", "conn_id", c.id, "err", err)
				continue
			}
			h.join(c, p.Categoria)
		default:
			h.log.Debug("ignoring frame", "conn_id", c.id, "event", f.Event)
		}
	}
}

func (h *Hub) writePump(c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
