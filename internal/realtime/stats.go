package realtime

import (
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketing-hub/autowebinar/pkg/response"
)

// RoomStats is one watch room's connection snapshot on this instance.
type RoomStats struct {
	WebinarID uuid.UUID `json:"webinar_id"`
	Viewers   int       `json:"viewers"`
}

// Snapshot reports the rooms with connected viewers, sorted by webinar ID for
// a stable admin display.
func Snapshot(hub *Hub) []RoomStats {
	rooms := hub.ActiveRooms()
	stats := make([]RoomStats, 0, len(rooms))
	for _, id := range rooms {
		stats = append(stats, RoomStats{WebinarID: id, Viewers: hub.ViewerCount(id)})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].WebinarID.String() < stats[j].WebinarID.String()
	})
	return stats
}

// LiveStats handles GET /realtime/rooms for the admin dashboard.
func LiveStats(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := Snapshot(hub)
		total := 0
		for _, s := range stats {
			total += s.Viewers
		}
		response.OK(c, gin.H{"rooms": stats, "total_viewers": total})
	}
}
