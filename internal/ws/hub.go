package ws

import (
	"sync"
	"time"
)

// Hub tracks live subscribers on two axes: by conversation for group
// traffic and by user for private traffic. Delivery is best-effort; a
// client whose send buffer is full misses the event and catches up through
// the history endpoints.
type Hub struct {
	clientsByConv map[string]map[*Client]struct{}
	clientsByUser map[string]map[*Client]struct{}
	mu            sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clientsByConv: make(map[string]map[*Client]struct{}),
		clientsByUser: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.ConversationID != "" {
		if _, ok := h.clientsByConv[c.ConversationID]; !ok {
			h.clientsByConv[c.ConversationID] = make(map[*Client]struct{})
		}
		h.clientsByConv[c.ConversationID][c] = struct{}{}
	}
	if _, ok := h.clientsByUser[c.UserID]; !ok {
		h.clientsByUser[c.UserID] = make(map[*Client]struct{})
	}
	h.clientsByUser[c.UserID][c] = struct{}{}
}

func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clientsByConv[c.ConversationID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clientsByConv, c.ConversationID)
		}
	}
	if set, ok := h.clientsByUser[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clientsByUser, c.UserID)
		}
	}
}

// BroadcastToConversation delivers one copy to every subscriber of the
// conversation topic on this instance.
func (h *Hub) BroadcastToConversation(conversationID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clientsByConv[conversationID] {
		select {
		case c.Send <- payload:
		default:
			// slow consumer, drop
		}
	}
}

// SendToUser delivers to every socket the user has open on this instance.
func (h *Hub) SendToUser(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clientsByUser[userID] {
		select {
		case c.Send <- payload:
		default:
		}
	}
}

func (h *Hub) ConversationSubscribers(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientsByConv[conversationID])
}

// Client is one live websocket session.
type Client struct {
	UserID         string
	ConversationID string
	Send           chan []byte
	Connected      time.Time
}

func NewClient(userID, conversationID string) *Client {
	return &Client{
		UserID:         userID,
		ConversationID: conversationID,
		Send:           make(chan []byte, 256),
		Connected:      time.Now(),
	}
}
