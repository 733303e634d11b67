package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"doc-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DocumentNotice is pushed to a client when one of their documents changes
// ingestion state.
type DocumentNotice struct {
	DocumentId string `json:"document_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type Hub struct {
	// Registered clients map: UserID -> List of Clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a notice to every connection of one user, locally and, via
// Redis, on other instances.
func (h *Hub) Send(userID uuid.UUID, notice DocumentNotice) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "document_update",
		"data": notice,
	})

	h.mu.RLock()
	clients, localFound := h.clients[userID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": userID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userID.String(),
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// Broadcast delivers a notice to every connected client.
func (h *Hub) Broadcast(notice DocumentNotice) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "document_update",
		"data": notice,
	})

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": "*",
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// subscribeToRedis relays notices published by other instances to locally
// connected clients. All instances share the "cluster_events" channel and
// filter by target user.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetUserID == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						close(client.Send)
						h.unregister <- client
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[uid]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
