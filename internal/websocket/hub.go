package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans Redis pub/sub messages out to connected clients, keyed by
// learner. The app is single-learner per device so there is no auth on
// this endpoint, only a learner_id to scope the subscription.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	redisClient *redis.Client
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		redisClient: redisClient,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	learnerIDStr := r.URL.Query().Get("learner_id")
	learnerID, err := uuid.Parse(learnerIDStr)
	if err != nil {
		http.Error(w, "Invalid learner_id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(learnerID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(learnerID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(learnerID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[learnerID] = append(h.connections[learnerID], conn)

	// Start pub/sub subscription if this is the first connection for this learner
	if len(h.connections[learnerID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[learnerID] = cancel
		go h.subscribeToPubSub(ctx, learnerID)
	}

	log.Printf("WebSocket connected: learner %s (total: %d)", learnerID, len(h.connections[learnerID]))
}

func (h *Hub) unregisterConnection(learnerID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[learnerID]
	for i, c := range conns {
		if c == conn {
			h.connections[learnerID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[learnerID]) == 0 {
		delete(h.connections, learnerID)
		if cancel, ok := h.cancelFuncs[learnerID]; ok {
			cancel()
			delete(h.cancelFuncs, learnerID)
		}
	}

	log.Printf("WebSocket disconnected: learner %s", learnerID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, learnerID uuid.UUID) {
	channel := "learner_updates:" + learnerID.String()
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(learnerID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(learnerID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[learnerID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// SendToLearner sends a message directly to a learner (for use outside pub/sub)
func (h *Hub) SendToLearner(learnerID uuid.UUID, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.broadcast(learnerID, data)
}
