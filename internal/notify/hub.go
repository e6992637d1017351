// Package notify delivers real-time events to an account's open
// browser sessions over WebSocket. Delivery is best-effort: slow
// clients drop messages rather than blocking the sender.
package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Message is one event pushed to a client.
type Message struct {
	Type   string         `json:"type"`
	Module int            `json:"module,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// ModuleUnlocked builds the event for a newly unlocked module.
func ModuleUnlocked(module int) Message {
	return Message{Type: "module_unlocked", Module: module}
}

// Hub routes messages to the clients of a given account.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client for an account.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.accountID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.accountID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.accountID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.accountID)
		}
	}
	h.mu.Unlock()
}

// Send delivers a message to every client of the account.
func (h *Hub) Send(accountID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal notify message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[accountID] {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop rather than block
		}
	}
}

// ClientCount returns the number of connected clients for an account.
func (h *Hub) ClientCount(accountID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}
