package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func joinRoom(hub *Hub, webinarID uuid.UUID) *Client {
	c := &Client{
		ID:        uuid.New().String(),
		WebinarID: webinarID,
		hub:       hub,
		send:      make(chan WSMessage, 1),
	}
	hub.Register(c)
	return c
}

func TestSnapshotReportsActiveRooms(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	assert.Empty(t, Snapshot(hub))

	roomA := uuid.New()
	roomB := uuid.New()
	joinRoom(hub, roomA)
	joinRoom(hub, roomA)
	leaver := joinRoom(hub, roomB)

	stats := Snapshot(hub)
	require.Len(t, stats, 2)
	byRoom := map[uuid.UUID]int{}
	for _, s := range stats {
		byRoom[s.WebinarID] = s.Viewers
	}
	assert.Equal(t, 2, byRoom[roomA])
	assert.Equal(t, 1, byRoom[roomB])

	// Rooms drop out of the snapshot when their last viewer leaves.
	hub.Unregister(leaver)
	stats = Snapshot(hub)
	require.Len(t, stats, 1)
	assert.Equal(t, roomA, stats[0].WebinarID)
}

func TestLiveStatsEndpoint(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	room := uuid.New()
	joinRoom(hub, room)
	joinRoom(hub, room)

	router := gin.New()
	router.GET("/realtime/rooms", LiveStats(hub))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/realtime/rooms", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			Rooms        []RoomStats `json:"rooms"`
			TotalViewers int         `json:"total_viewers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Rooms, 1)
	assert.Equal(t, room, body.Data.Rooms[0].WebinarID)
	assert.Equal(t, 2, body.Data.Rooms[0].Viewers)
	assert.Equal(t, 2, body.Data.TotalViewers)
}
