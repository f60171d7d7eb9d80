package simchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureMessages() []Message {
	return []Message{
		{AppearAtSeconds: 120, SenderName: "Dana", Content: "great point", Position: 2},
		{AppearAtSeconds: 0, SenderName: "Alex", Content: "hi everyone", Position: 0},
		{AppearAtSeconds: 30, SenderName: "Sam", Content: "audio is good", Position: 1},
		{AppearAtSeconds: 30, SenderName: "Riley", Content: "same question", Position: 3},
	}
}

func TestVisibleAt(t *testing.T) {
	msgs := fixtureMessages()

	got := VisibleAt(msgs, 30)
	require.Len(t, got, 3)
	assert.Equal(t, "Alex", got[0].SenderName)
	assert.Equal(t, "Sam", got[1].SenderName)
	assert.Equal(t, "Riley", got[2].SenderName)

	assert.Len(t, VisibleAt(msgs, 1000), 4)
	assert.Empty(t, VisibleAt(msgs, -1))
}

func TestNewSinceBounds(t *testing.T) {
	msgs := fixtureMessages()

	// Lower bound exclusive, upper bound inclusive.
	got := NewSince(msgs, 120, 30)
	require.Len(t, got, 1)
	assert.Equal(t, "Dana", got[0].SenderName)

	got = NewSince(msgs, 30, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "Sam", got[0].SenderName)

	assert.Empty(t, NewSince(msgs, 29, 29))
}

func TestNewSinceOrdersByOffsetThenPosition(t *testing.T) {
	msgs := fixtureMessages()
	got := NewSince(msgs, 120, -1)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"Alex", "Sam", "Riley", "Dana"}, []string{
		got[0].SenderName, got[1].SenderName, got[2].SenderName, got[3].SenderName,
	})
}

func TestDistribution(t *testing.T) {
	msgs := []Message{
		{AppearAtSeconds: 0},
		{AppearAtSeconds: 5},
		{AppearAtSeconds: 10},
		{AppearAtSeconds: 99},
	}

	buckets := Distribution(msgs, 100, 10)
	require.Len(t, buckets, 10)
	assert.Equal(t, Bucket{Start: 0, End: 10, Count: 2}, buckets[0])
	assert.Equal(t, Bucket{Start: 10, End: 20, Count: 1}, buckets[1])
	assert.Equal(t, Bucket{Start: 90, End: 100, Count: 1}, buckets[9])

	// Non-positive bucket count falls back to 20.
	assert.Len(t, Distribution(msgs, 100, 0), 20)

	// Uneven division caps the last bucket at the video end.
	buckets = Distribution(nil, 95, 10)
	require.Len(t, buckets, 10)
	assert.Equal(t, 95, buckets[9].End)
}
