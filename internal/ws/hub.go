package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Hub fans station events out to every connected operator UI
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	// welcome builds the first event a new client receives
	welcome func() Event

	logger  *slog.Logger
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     slog.Default(),
	}
}

// SetLogger replaces the default logger. Call before Run.
func (h *Hub) SetLogger(logger *slog.Logger) {
	h.logger = logger.With("component", "ws")
}

// SetWelcome installs the snapshot sent to each client on connect.
// Call before Run.
func (h *Hub) SetWelcome(fn func() Event) {
	h.welcome = fn
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case event := <-h.broadcast:
			h.broadcastAll(event)
		}
	}
}

// join hands a new client to Run, giving up if the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	if h.welcome == nil {
		return
	}
	message, err := json.Marshal(h.welcome())
	if err != nil {
		return
	}
	select {
	case client.send <- message:
	default:
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) broadcastAll(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Broadcast queues an event for every client. The event is dropped and
// logged when the queue is full.
func (h *Hub) Broadcast(eventType EventType, data interface{}) {
	event := Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- event:
	default:
		total := h.dropped.Add(1)
		h.logger.Warn("event queue full, event dropped",
			slog.String("event_type", string(eventType)),
			slog.Int64("dropped_total", total),
		)
	}
}

// Dropped is the number of events lost to a full queue
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

func (h *Hub) GetConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
