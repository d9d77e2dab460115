package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Event names pushed to connected clients.
const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderCancelled = "order.cancelled"
	EventTableUpdated   = "table.updated"
)

// Event is the wire envelope for every push message.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type outboundMessage struct {
	outletID uuid.UUID
	data     []byte
}

// Hub fans events out to clients grouped by outlet. Each outlet is a
// room; a client only receives events for the outlet it subscribed to.
type Hub struct {
	rooms      map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan outboundMessage
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outboundMessage, 64),
	}
}

// Run owns the room map. All membership changes and broadcasts go
// through the channels, so no locking is needed.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			room, ok := h.rooms[client.outletID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.outletID] = room
			}
			room[client] = true

		case client := <-h.unregister:
			if room, ok := h.rooms[client.outletID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.outletID)
					}
				}
			}

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.outletID] {
				select {
				case client.send <- msg.data:
				default:
					// Slow client; drop it rather than block the hub.
					delete(h.rooms[msg.outletID], client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast pushes an event to every client subscribed to the outlet.
func (h *Hub) Broadcast(outletID uuid.UUID, eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("marshal ws event")
		return
	}
	h.broadcast <- outboundMessage{outletID: outletID, data: data}
}
