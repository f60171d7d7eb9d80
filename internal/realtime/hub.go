package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// ViewerChangeHandler is called when the connected viewer count of a watch
// room changes, so the broadcaster can start and stop per-room loops.
type ViewerChangeHandler func(webinarID uuid.UUID, count int)

// Hub maintains webinar_id -> set of viewer connections and fans out push
// messages. Uses Redis pub/sub for horizontal scaling: local broadcast plus
// publish to Redis.
type Hub struct {
	// webinarID -> map[clientID]*Client
	rooms     map[uuid.UUID]map[string]*Client
	subs      map[uuid.UUID]func() // cancel Redis subscription per room
	mu        sync.RWMutex
	logger    *zap.Logger
	redis     RedisPublisher
	redisSub  RedisSubscriber
	onViewers ViewerChangeHandler
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishWatchEvent(webinarID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to watch-room channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeWatchRoom(webinarID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// SetViewerChangeHandler sets the callback for viewer count changes.
func (h *Hub) SetViewerChangeHandler(fn ViewerChangeHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onViewers = fn
}

// Register adds a viewer to a watch room. Starts the Redis subscription for
// the room when the first viewer joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.WebinarID] == nil {
		h.rooms[c.WebinarID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeWatchRoom(c.WebinarID, func(event string, payload []byte) {
				h.BroadcastToRoom(c.WebinarID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.WebinarID] = cancel
			}
		}
	}
	h.rooms[c.WebinarID][c.ID] = c
	count := len(h.rooms[c.WebinarID])
	onViewers := h.onViewers
	h.mu.Unlock()
	if onViewers != nil {
		onViewers(c.WebinarID, count)
	}
	h.logger.Debug("viewer joined watch room", zap.String("client_id", c.ID), zap.String("webinar_id", c.WebinarID.String()))
}

// Unregister removes a viewer from a watch room. Cancels the Redis
// subscription when the last viewer leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	var count int
	if m, ok := h.rooms[c.WebinarID]; ok {
		delete(m, c.ID)
		count = len(m)
		if count == 0 {
			delete(h.rooms, c.WebinarID)
			if cancel, ok := h.subs[c.WebinarID]; ok {
				cancel()
				delete(h.subs, c.WebinarID)
			}
		}
	}
	onViewers := h.onViewers
	h.mu.Unlock()
	if onViewers != nil {
		onViewers(c.WebinarID, count)
	}
	h.logger.Debug("viewer left watch room", zap.String("client_id", c.ID), zap.String("webinar_id", c.WebinarID.String()))
}

// BroadcastToRoom sends a message to all viewers in a watch room (local only).
func (h *Hub) BroadcastToRoom(webinarID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[webinarID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToRoomAndPublish sends to local viewers and publishes to Redis for
// other instances.
func (h *Hub) BroadcastToRoomAndPublish(webinarID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToRoom(webinarID, event, payload)
	if h.redis != nil {
		_ = h.redis.PublishWatchEvent(webinarID, event, data)
	}
}

// ViewerCount returns the number of connected viewers in a watch room on this
// instance.
func (h *Hub) ViewerCount(webinarID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[webinarID])
}

// ActiveRooms returns the webinar IDs that currently have connected viewers.
func (h *Hub) ActiveRooms() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}
