package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/podiumpicks/podium-api/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is handled by the CORS layer in front; the
		// socket itself carries no credentials.
		return true
	},
}

type LiveHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewLiveHandler(hub *live.Hub, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{hub: hub, logger: logger}
}

// ServeGlobal subscribes the connection to every event.
func (h *LiveHandler) ServeGlobal(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, live.GlobalRoom)
}

// ServeRace subscribes the connection to a single race's events.
func (h *LiveHandler) ServeRace(w http.ResponseWriter, r *http.Request) {
	raceID, err := strconv.Atoi(chi.URLParam(r, "raceID"))
	if err != nil || raceID <= 0 {
		http.Error(w, "invalid race ID", http.StatusBadRequest)
		return
	}
	h.serve(w, r, live.RaceRoom(raceID))
}

func (h *LiveHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", "room", room, "error", err)
		return
	}

	client := live.NewClient(h.hub, conn, room)
	client.Serve()
}
