package internal

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractVideoID normalizes a YouTube URL or bare ID to the canonical
// 11-character video ID. Accepted forms:
//   - a bare 11-character ID (taken verbatim, no character-set check)
//   - a youtu.be short link
//   - a youtube.com/watch?v=... URL
//   - any other URL, using the last non-empty path segment
func ExtractVideoID(arg string) (string, error) {
	if arg == "" {
		return "", fmt.Errorf("empty YouTube URL or ID")
	}

	if len(arg) == 11 && !strings.ContainsAny(arg, "/?") {
		return arg, nil
	}

	u, err := url.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("parsing video reference %q: %w", arg, err)
	}

	if u.Hostname() == "youtu.be" {
		if id := strings.TrimLeft(u.Path, "/"); id != "" {
			return id, nil
		}
	}

	if v := u.Query().Get("v"); v != "" {
		return v, nil
	}

	// Fallback: last non-empty path segment.
	parts := strings.Split(u.Path, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i], nil
		}
	}

	return "", fmt.Errorf("could not extract a video ID from %q", arg)
}

// WatchURL builds a full watch URL from an argument that may already be a URL.
func WatchURL(arg string) string {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return arg
	}
	return "https://www.youtube.com/watch?v=" + arg
}

// ShortURL is the canonical short link for a video ID, used when no
// webpage URL was stored with the video.
func ShortURL(videoID string) string {
	return "https://youtu.be/" + videoID
}
