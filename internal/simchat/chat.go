// Package simchat replays pre-authored chat messages against the playback
// clock, so every viewer sees the same messages appear at the same video
// offsets.
package simchat

import (
	"sort"

	"github.com/google/uuid"
)

// MessageType classifies a simulated chat message.
type MessageType string

const (
	TypeComment     MessageType = "COMMENT"
	TypeQuestion    MessageType = "QUESTION"
	TypeReaction    MessageType = "REACTION"
	TypeTestimonial MessageType = "TESTIMONIAL"
)

// Message is one simulated chat entry, pinned to a video offset.
type Message struct {
	ID              uuid.UUID   `json:"id"`
	WebinarID       uuid.UUID   `json:"webinar_id"`
	AppearAtSeconds int         `json:"appear_at_seconds"`
	SenderName      string      `json:"sender_name"`
	SenderAvatar    *string     `json:"sender_avatar,omitempty"`
	Content         string      `json:"content"`
	Type            MessageType `json:"message_type"`
	Position        int         `json:"position"` // tie-break for same-offset messages
}

func sortByAppearance(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].AppearAtSeconds != msgs[j].AppearAtSeconds {
			return msgs[i].AppearAtSeconds < msgs[j].AppearAtSeconds
		}
		return msgs[i].Position < msgs[j].Position
	})
}

// VisibleAt returns all messages that have appeared by currentSeconds, in
// display order.
func VisibleAt(messages []Message, currentSeconds int) []Message {
	var out []Message
	for _, m := range messages {
		if m.AppearAtSeconds <= currentSeconds {
			out = append(out, m)
		}
	}
	sortByAppearance(out)
	return out
}

// NewSince returns the messages that became visible after lastShownSeconds and
// at or before currentSeconds. This is the per-poll delta for a client.
func NewSince(messages []Message, currentSeconds, lastShownSeconds int) []Message {
	var out []Message
	for _, m := range messages {
		if m.AppearAtSeconds > lastShownSeconds && m.AppearAtSeconds <= currentSeconds {
			out = append(out, m)
		}
	}
	sortByAppearance(out)
	return out
}

// Bucket is one column of the message-density graph in the chat editor.
type Bucket struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Count int `json:"count"`
}

// Distribution buckets messages across the video for the editor graph.
func Distribution(messages []Message, videoDuration, bucketCount int) []Bucket {
	if bucketCount <= 0 {
		bucketCount = 20
	}
	bucketSize := (videoDuration + bucketCount - 1) / bucketCount
	if bucketSize <= 0 {
		bucketSize = 1
	}
	buckets := make([]Bucket, 0, bucketCount)
	for i := 0; i < bucketCount; i++ {
		start := i * bucketSize
		end := (i + 1) * bucketSize
		if end > videoDuration {
			end = videoDuration
		}
		count := 0
		for _, m := range messages {
			if m.AppearAtSeconds >= start && m.AppearAtSeconds < end {
				count++
			}
		}
		buckets = append(buckets, Bucket{Start: start, End: end, Count: count})
	}
	return buckets
}
