package hub

import (
	"encoding/json"
	"sync"
)

// Relationship event types pushed to connected users.
const (
	EventFriendRequest = "friend.request"
	EventFriendAccept  = "friend.accept"
	EventFriendSuggest = "friend.suggest"
	EventFollow        = "follow"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection (one open event stream of a
// user). It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub manages the event streams of all connected users. A user may hold
// several clients at once (one per open tab or device).
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client for a specific user.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a client of a user.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Notify sends an event to all connected clients of a specific user.
func (h *Hub) Notify(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.users[userID]; ok {
		messageBytes, err := json.Marshal(event)
		if err != nil {
			// Handle error appropriately, maybe log it
			return
		}

		for client := range clients {
			// Use a non-blocking send to prevent a slow client from blocking the hub.
			select {
			case client <- messageBytes:
			default:
				// Client channel is full, maybe they are disconnected or slow.
				// The unsubscribe logic will handle cleaning this up eventually.
			}
		}
	}
}
