package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"wine-cellar-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries agent events between instances so a client
// connected elsewhere still sees them.
const redisChannel = "agent_events"

// Hub fans agent events out to the websocket clients attached to each
// conversation session. A session can have several clients (multi-tab).
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	// instanceID discriminates this hub's own bus messages from those
	// of other instances, so local clients never see an event twice.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceID: uuid.NewString(),
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
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Session fully disconnected", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Notify pushes one agent event to every client of the session, locally
// and via Redis for other instances.
func (h *Hub) Notify(sessionID string, event string, data map[string]interface{}) {
	message, _ := json.Marshal(map[string]interface{}{
		"type": event,
		"data": data,
	})

	h.deliverLocal(sessionID, message)

	if h.rdb != nil {
		payload, _ := json.Marshal(busEnvelope{
			Origin:          h.instanceID,
			TargetSessionID: sessionID,
			Message:         json.RawMessage(message),
		})
		h.rdb.Publish(context.Background(), redisChannel, payload)
	}
}

// busEnvelope is the cross-instance wire format on the redis channel.
type busEnvelope struct {
	Origin          string          `json:"origin"`
	TargetSessionID string          `json:"target_session_id"`
	Message         json.RawMessage `json:"message"`
}

func (h *Hub) deliverLocal(sessionID string, message []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[sessionID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.Send <- message:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"session_id": sessionID})
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleBusPayload([]byte(msg.Payload))
	}
}

// handleBusPayload delivers a cross-instance event to local clients.
// Events this instance published itself were already delivered locally
// in Notify and are dropped here.
func (h *Hub) handleBusPayload(raw []byte) {
	var env busEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.logger.Warn("Hub", "Undecodable bus payload", map[string]interface{}{"error": err.Error()})
		return
	}
	if env.Origin == h.instanceID {
		return
	}
	h.deliverLocal(env.TargetSessionID, env.Message)
}
