package internal

import (
	"fmt"
	"strings"
)

// MetadataView is the compact projection of a video's stored metadata that
// is safe to hand to the language model. The raw provider blob can be huge,
// so it is only used here as a derivation source and never forwarded whole.
type MetadataView struct {
	YoutubeID       string  `json:"youtube_id"`
	Title           string  `json:"title,omitempty"`
	URL             string  `json:"url,omitempty"`
	Channel         string  `json:"channel,omitempty"`
	Speaker         string  `json:"speaker,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	PublishedAt     string  `json:"published_at,omitempty"`
}

// BuildMetadataView normalizes a stored chunk-metadata record into the
// compact view, falling back to fields of the raw provider payload where
// the compact fields are absent.
func BuildMetadataView(videoID string, metadata map[string]any) MetadataView {
	raw, _ := metadata["raw_meta"].(map[string]any)

	view := MetadataView{
		YoutubeID:       videoID,
		Title:           firstString(metadata, raw, "title", "title"),
		URL:             firstString(metadata, raw, "url", "webpage_url"),
		Channel:         stringField(metadata, "channel"),
		Speaker:         stringField(metadata, "speaker"),
		DurationSeconds: firstFloat(metadata, raw, "duration_seconds", "duration"),
		PublishedAt:     stringField(metadata, "published_at"),
	}

	if view.Channel == "" {
		view.Channel = stringField(raw, "channel")
	}
	if view.Channel == "" {
		view.Channel = stringField(raw, "uploader")
	}

	if view.Speaker == "" {
		view.Speaker = stringField(raw, "speaker")
	}
	if view.Speaker == "" {
		view.Speaker = stringField(raw, "artist")
	}
	// A "speaker" that just repeats the channel name adds nothing.
	if view.Speaker != "" && view.Speaker == view.Channel {
		view.Speaker = ""
	}

	if view.PublishedAt == "" {
		upload := stringField(metadata, "upload_date")
		if upload == "" {
			upload = stringField(raw, "upload_date")
		}
		view.PublishedAt = normalizeUploadDate(upload)
	}

	return view
}

// FormatFields renders the view as labeled lines for a metadata prompt.
// Absent values render as "Unknown" rather than empty strings.
func (v MetadataView) FormatFields() string {
	duration := "Unknown"
	if v.DurationSeconds > 0 {
		duration = fmt.Sprintf("%.0f seconds", v.DurationSeconds)
	}

	lines := []string{
		"Video ID: " + orUnknown(v.YoutubeID),
		"Title: " + orUnknown(v.Title),
		"URL: " + orUnknown(v.URL),
		"Channel: " + orUnknown(v.Channel),
		"Speaker: " + orUnknown(v.Speaker),
		"Duration: " + duration,
		"Published: " + orUnknown(v.PublishedAt),
	}
	return strings.Join(lines, "\n")
}

// normalizeUploadDate turns yt-dlp's YYYYMMDD form into YYYY-MM-DD; any
// other value passes through unchanged.
func normalizeUploadDate(upload string) string {
	if len(upload) == 8 && isDigits(upload) {
		return upload[0:4] + "-" + upload[4:6] + "-" + upload[6:8]
	}
	return upload
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func floatField(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func firstString(metadata, raw map[string]any, metaKey, rawKey string) string {
	if s := stringField(metadata, metaKey); s != "" {
		return s
	}
	return stringField(raw, rawKey)
}

func firstFloat(metadata, raw map[string]any, metaKey, rawKey string) float64 {
	if f := floatField(metadata, metaKey); f != 0 {
		return f
	}
	return floatField(raw, rawKey)
}
