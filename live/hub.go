// Package live pushes race and leaderboard events to connected browsers over
// websockets, replacing polling after admin actions.
package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Event types broadcast by the services.
const (
	EventResultConfirmed    = "RESULT_CONFIRMED"
	EventResultDeleted      = "RESULT_DELETED"
	EventRaceUnlocked       = "RACE_UNLOCKED"
	EventScoresRecalculated = "SCORES_RECALCULATED"
)

// GlobalRoom receives every event, for pages like the leaderboard that care
// about all races.
const GlobalRoom = "global"

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Room    string      `json:"room,omitempty"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// RaceRoom names the per-race room clients join from the race detail page.
func RaceRoom(raceID int) string {
	return fmt.Sprintf("race:%d", raceID)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("live client registered",
				slog.String("room", client.room),
				slog.Int("room_size", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, registered := clients[client]; registered {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRace notifies clients watching one race.
func (h *Hub) BroadcastToRace(raceID int, eventType string, payload interface{}) {
	h.broadcast(RaceRoom(raceID), eventType, payload)
}

// BroadcastGlobal notifies clients in the global room.
func (h *Hub) BroadcastGlobal(eventType string, payload interface{}) {
	h.broadcast(GlobalRoom, eventType, payload)
}

func (h *Hub) broadcast(room, eventType string, payload interface{}) {
	messageBytes, err := json.Marshal(Message{Type: eventType, Payload: payload, Room: room})
	if err != nil {
		h.logger.Error("failed to marshal live message",
			slog.String("room", room), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		select {
		case client.send <- messageBytes:
		default:
			// Slow consumer; drop the event rather than block the broadcast.
			h.logger.Warn("live client send buffer full, dropping event",
				slog.String("room", room), slog.String("type", eventType))
		}
	}
}
