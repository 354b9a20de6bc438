package stream

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub fans technician position updates out to subscribed customer sockets.
// With a redis client it also relays updates published by other instances.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	TechnicianID string
	Send         chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		go h.subscribeRedis()
	}
	return h
}

func (h *Hub) Register(technicianID string) *Client {
	client := &Client{
		TechnicianID: technicianID,
		Send:         make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[technicianID] == nil {
		h.clients[technicianID] = map[*Client]struct{}{}
	}
	h.clients[technicianID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if technicianClients, ok := h.clients[client.TechnicianID]; ok {
		delete(technicianClients, client)
		if len(technicianClients) == 0 {
			delete(h.clients, client.TechnicianID)
		}
	}
	close(client.Send)
}

func (h *Hub) Broadcast(technicianID string, payload []byte) {
	// the lock is held across the sends so Unregister cannot close a
	// channel mid-loop; sends never block
	h.mu.RLock()
	for client := range h.clients[technicianID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
	h.mu.RUnlock()

	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(technicianID), payload).Err()
		if err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

func (h *Hub) subscribeRedis() {
	ctx := context.Background()
	pubsub := h.redis.PSubscribe(ctx, "technician:*:positions")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		technicianID := technicianIDFromChannel(msg.Channel)
		h.mu.RLock()
		for client := range h.clients[technicianID] {
			select {
			case client.Send <- []byte(msg.Payload):
			default:
			}
		}
		h.mu.RUnlock()
	}
}

func redisChannel(technicianID string) string {
	return "technician:" + technicianID + ":positions"
}

func technicianIDFromChannel(ch string) string {
	// technician:{id}:positions
	const prefix = "technician:"
	const suffix = ":positions"
	if len(ch) <= len(prefix)+len(suffix) {
		return ""
	}
	return ch[len(prefix) : len(ch)-len(suffix)]
}
