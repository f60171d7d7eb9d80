package playback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractYouTubeID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/video", ""},
		{"too-short", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractYouTubeID(c.in), "input %q", c.in)
	}
}

func TestExtractVimeoID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://vimeo.com/123456789", "123456789"},
		{"https://player.vimeo.com/video/123456789", "123456789"},
		{"123456789", "123456789"},
		{"https://example.com/video", ""},
		{"abc123", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractVimeoID(c.in), "input %q", c.in)
	}
}

func TestDetectVideoType(t *testing.T) {
	assert.Equal(t, VideoYouTube, DetectVideoType("https://www.youtube.com/watch?v=x"))
	assert.Equal(t, VideoYouTube, DetectVideoType("https://youtu.be/x"))
	assert.Equal(t, VideoVimeo, DetectVideoType("https://vimeo.com/123"))
	assert.Equal(t, VideoUpload, DetectVideoType("https://cdn.example.com/videos/a.mp4"))
}

func TestEmbedURL(t *testing.T) {
	t.Run("youtube", func(t *testing.T) {
		got := EmbedURL("https://youtu.be/dQw4w9WgXcQ", VideoYouTube, EmbedOptions{
			Autoplay: true, Controls: false, StartTime: 90,
		})
		assert.True(t, strings.HasPrefix(got, "https://www.youtube.com/embed/dQw4w9WgXcQ?"))
		assert.Contains(t, got, "autoplay=1")
		assert.Contains(t, got, "controls=0")
		assert.Contains(t, got, "start=90")
	})

	t.Run("vimeo start time in fragment", func(t *testing.T) {
		got := EmbedURL("https://vimeo.com/123456789", VideoVimeo, EmbedOptions{
			Autoplay: true, Controls: true, StartTime: 120,
		})
		assert.True(t, strings.HasPrefix(got, "https://player.vimeo.com/video/123456789?"))
		assert.True(t, strings.HasSuffix(got, "#t=120s"))
		assert.Contains(t, got, "controls=1")
	})

	t.Run("unrecognized url passes through", func(t *testing.T) {
		raw := "https://cdn.example.com/videos/a.mp4"
		assert.Equal(t, raw, EmbedURL(raw, VideoUpload, EmbedOptions{Autoplay: true}))
		assert.Equal(t, "not a url", EmbedURL("not a url", VideoYouTube, EmbedOptions{}))
	})
}
