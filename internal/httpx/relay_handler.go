package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/resto-pos/internal/orders"
	"github.com/ariefcatur/resto-pos/internal/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// EmitReq asks the relay to notify screens. Room defaults to Categoria; Global sends to
// every screen.
type EmitReq struct {
	Event     string `json:"event"`
	Categoria string `json:"categoria"`
	Room      string `json:"room"`
	Global    bool   `json:"global"`
}

type EmitResp struct {
	EventID string `json:"event_id"`
	Room    string `json:"room,omitempty"`
}

type RelayHandler struct {
	Relay *realtime.Relay
}

func (h *RelayHandler) Register(r *chi.Mux) {
	r.Get("/ws", h.Relay.Hub().ServeWS)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/emit", h.emit)
		r.Get("/rooms", h.rooms)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *RelayHandler) emit(w http.ResponseWriter, r *http.Request) {
	var req EmitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"errore": "json non valido"})
		return
	}
	if req.Event == "" {
		req.Event = orders.EventAggiornaDashboard
	}
	room := req.Room
	if room == "" {
		room = req.Categoria
	}
	if req.Global {
		room = ""
	} else if room == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"errore": "categoria o room mancante"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	env, err := h.Relay.Emit(ctx, req.Event, room, req.Categoria)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"errore": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, EmitResp{EventID: env.EventID, Room: env.Room})
}

func (h *RelayHandler) rooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connections": h.Relay.Hub().Connections(),
		"rooms":       h.Relay.Hub().Rooms(),
	})
}
