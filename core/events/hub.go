package events

import (
	"encoding/json"
	"time"

	"waxcrate/logger"
)

// EventType names a collection change event.
type EventType string

const (
	EventRecordCreated EventType = "record_created"
	EventRecordUpdated EventType = "record_updated"
	EventRecordDeleted EventType = "record_deleted"
)

// Event is pushed to every connected client when the collection changes.
type Event struct {
	Type      EventType   `json:"type"`
	RecordID  int64       `json:"record_id"`
	Record    interface{} `json:"record,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Hub fans collection events out to websocket clients. All client
// bookkeeping happens in the Run goroutine; Publish and the clients only
// touch channels.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub creates a hub. Call Run in its own goroutine before publishing.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
	}
}

// Run processes register, unregister and broadcast requests until the
// process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logger.Debug("Events client connected", logger.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logger.Debug("Events client disconnected", logger.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Publish broadcasts an event to all connected clients.
func (h *Hub) Publish(eventType EventType, recordID int64, record interface{}) {
	evt := Event{
		Type:      eventType,
		RecordID:  recordID,
		Record:    record,
		Timestamp: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(evt)
	if err != nil {
		logger.Error("Failed to marshal event", logger.ErrorField(err))
		return
	}

	h.broadcast <- data
}
