package playback

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// VideoType identifies the hosting provider of a webinar video.
type VideoType string

const (
	VideoYouTube VideoType = "YOUTUBE"
	VideoVimeo   VideoType = "VIMEO"
	VideoUpload  VideoType = "UPLOAD"
)

// EmbedOptions controls player parameters in generated embed URLs.
type EmbedOptions struct {
	Autoplay  bool
	Controls  bool
	StartTime int // seconds
}

var (
	youtubeURLPattern = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`)
	youtubeIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	vimeoURLPatterns  = []*regexp.Regexp{
		regexp.MustCompile(`vimeo\.com/(\d+)`),
		regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`),
	}
	vimeoIDPattern = regexp.MustCompile(`^\d+$`)
)

// ExtractYouTubeID pulls the video ID out of a YouTube URL or bare ID.
// Returns "" when the input matches no known pattern.
func ExtractYouTubeID(videoURL string) string {
	if m := youtubeURLPattern.FindStringSubmatch(videoURL); m != nil {
		return m[1]
	}
	if youtubeIDPattern.MatchString(videoURL) {
		return videoURL
	}
	return ""
}

// ExtractVimeoID pulls the numeric video ID out of a Vimeo URL or bare ID.
func ExtractVimeoID(videoURL string) string {
	for _, p := range vimeoURLPatterns {
		if m := p.FindStringSubmatch(videoURL); m != nil {
			return m[1]
		}
	}
	if vimeoIDPattern.MatchString(videoURL) {
		return videoURL
	}
	return ""
}

// DetectVideoType guesses the provider from a video URL.
func DetectVideoType(videoURL string) VideoType {
	if strings.Contains(videoURL, "youtube.com") || strings.Contains(videoURL, "youtu.be") {
		return VideoYouTube
	}
	if strings.Contains(videoURL, "vimeo.com") {
		return VideoVimeo
	}
	return VideoUpload
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// EmbedURL builds a provider-specific player URL with autoplay/controls/start
// parameters. Unrecognized URLs are returned unchanged; callers must tolerate
// an un-embeddable URL being passed through.
func EmbedURL(videoURL string, videoType VideoType, opts EmbedOptions) string {
	switch videoType {
	case VideoYouTube:
		id := ExtractYouTubeID(videoURL)
		if id == "" {
			return videoURL
		}
		params := url.Values{}
		params.Set("autoplay", boolParam(opts.Autoplay))
		params.Set("controls", boolParam(opts.Controls))
		params.Set("start", fmt.Sprintf("%d", opts.StartTime))
		params.Set("rel", "0")
		params.Set("modestbranding", "1")
		params.Set("playsinline", "1")
		params.Set("enablejsapi", "1")
		return "https://www.youtube.com/embed/" + id + "?" + params.Encode()

	case VideoVimeo:
		id := ExtractVimeoID(videoURL)
		if id == "" {
			return videoURL
		}
		params := url.Values{}
		params.Set("autoplay", boolParam(opts.Autoplay))
		params.Set("controls", boolParam(opts.Controls))
		params.Set("playsinline", "1")
		params.Set("quality", "auto")
		params.Set("transparent", "1")
		// Vimeo takes the start offset as a #t= fragment, not a query param.
		return fmt.Sprintf("https://player.vimeo.com/video/%s?%s#t=%ds", id, params.Encode(), opts.StartTime)

	default:
		return videoURL
	}
}
