package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketing-hub/autowebinar/internal/attendees"
	"github.com/marketing-hub/autowebinar/internal/models"
	"github.com/marketing-hub/autowebinar/internal/simchat"
	"github.com/marketing-hub/autowebinar/internal/webinars"
)

// Broadcaster runs a push loop per watch room with connected viewers: every
// tick it recomputes the playback state, the simulated attendee count, and
// the simulated chat delta, and fans them out over the hub. Each instance
// pushes to its own local viewers only, so cross-instance duplication never
// occurs.
type Broadcaster struct {
	hub         *Hub
	webinarRepo *webinars.Repository
	chatRepo    *simchat.Repository
	interval    time.Duration
	logger      *zap.Logger

	mu    sync.Mutex
	loops map[uuid.UUID]context.CancelFunc
}

// NewBroadcaster creates a watch-room broadcaster.
func NewBroadcaster(hub *Hub, webinarRepo *webinars.Repository, chatRepo *simchat.Repository, intervalSec int, logger *zap.Logger) *Broadcaster {
	if intervalSec <= 0 {
		intervalSec = 5
	}
	return &Broadcaster{
		hub:         hub,
		webinarRepo: webinarRepo,
		chatRepo:    chatRepo,
		interval:    time.Duration(intervalSec) * time.Second,
		logger:      logger,
		loops:       make(map[uuid.UUID]context.CancelFunc),
	}
}

// HandleViewerChange starts the room loop when the first viewer connects and
// stops it when the last one leaves. Wire this into the hub's viewer change
// handler.
func (b *Broadcaster) HandleViewerChange(webinarID uuid.UUID, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if count > 0 {
		if _, running := b.loops[webinarID]; !running {
			ctx, cancel := context.WithCancel(context.Background())
			b.loops[webinarID] = cancel
			go b.run(ctx, webinarID)
		}
		return
	}
	if cancel, running := b.loops[webinarID]; running {
		cancel()
		delete(b.loops, webinarID)
	}
}

// Stop cancels every room loop.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, cancel := range b.loops {
		cancel()
		delete(b.loops, id)
	}
}

func (b *Broadcaster) run(ctx context.Context, webinarID uuid.UUID) {
	b.logger.Info("watch room push loop started",
		zap.String("webinar_id", webinarID.String()), zap.Duration("interval", b.interval))
	defer b.logger.Info("watch room push loop stopped", zap.String("webinar_id", webinarID.String()))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	lastChatPosition := -1
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lastChatPosition = b.tick(ctx, webinarID, lastChatPosition)
		}
	}
}

// tick pushes one round of state. Returns the chat position high-water mark
// so the next tick only sends new messages.
func (b *Broadcaster) tick(ctx context.Context, webinarID uuid.UUID, lastChatPosition int) int {
	webinar, err := b.webinarRepo.GetByID(ctx, webinarID)
	if err != nil || webinar == nil {
		if err != nil {
			b.logger.Warn("push loop load webinar failed", zap.Error(err), zap.String("webinar_id", webinarID.String()))
		}
		return lastChatPosition
	}
	if webinar.Status != models.WebinarActive {
		return lastChatPosition
	}

	// Viewers in a room follow their own scheduled starts, so there is no
	// single room clock. Ambient signals cycle with the video length instead,
	// which keeps them identical for everyone without per-viewer fanout.
	now := time.Now().UTC()
	position := 0
	progress := 0.0
	if webinar.VideoDurationSeconds > 0 {
		position = int(now.Unix() % int64(webinar.VideoDurationSeconds))
		progress = float64(position) / float64(webinar.VideoDurationSeconds)
	}
	count := attendees.Count(webinar.MinAttendees, webinar.MaxAttendees, progress, attendees.Config{
		PeakProgress:    webinar.PeakProgress,
		VariancePercent: webinar.VariancePercent,
		Seed:            webinar.AttendeeSeed,
	})
	b.hub.BroadcastToRoom(webinarID, "attendee_count", map[string]interface{}{
		"count":     count,
		"formatted": attendees.FormatCount(count),
		"at":        now.Unix(),
	})

	if lastChatPosition < 0 || position < lastChatPosition {
		// First tick, or the cycle wrapped around.
		lastChatPosition = position
	}
	if position > lastChatPosition {
		batch, err := b.chatRepo.ListWindow(ctx, webinarID, lastChatPosition, position)
		if err != nil {
			b.logger.Warn("push loop load chat failed", zap.Error(err))
		} else if len(batch) > 0 {
			b.hub.BroadcastToRoom(webinarID, "chat_batch", map[string]interface{}{
				"messages": batch,
			})
		}
		lastChatPosition = position
	}
	return lastChatPosition
}
