package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"
)

// ErrNoCaptions reports that no caption track could be obtained for a video,
// either because captions are disabled/absent or because the captions client
// is unusable in this environment. It is a soft condition: the transcript
// fallback chain moves on to audio transcription.
var ErrNoCaptions = errors.New("no captions available")

// VideoMetadata contains YouTube video information. Raw holds the full
// provider payload; the typed fields are the compact projection used
// throughout the pipeline.
type VideoMetadata struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	WebpageURL string  `json:"webpage_url"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	UploadDate string  `json:"upload_date"`

	Raw map[string]any `json:"-"`
}

// captionsUsable probes once per process whether the yt-dlp client can run
// at all. When the probe fails, the captions strategy short-circuits for the
// process lifetime instead of erroring on every video.
var captionsUsable = sync.OnceValue(func() bool {
	_, err := ytdlp.Install(context.Background(), nil)
	return err == nil
})

// YouTube handles video metadata, caption, and audio operations via yt-dlp
type YouTube struct {
	cacheDir string
	verbose  bool
}

// NewYouTube creates a new YouTube client
func NewYouTube(cacheDir string, verbose bool) *YouTube {
	return &YouTube{
		cacheDir: cacheDir,
		verbose:  verbose,
	}
}

// Metadata fetches video details without downloading any media
func (yt *YouTube) Metadata(ctx context.Context, youtubeURL string) (*VideoMetadata, error) {
	if yt.verbose {
		fmt.Println("Extracting video metadata...")
	}

	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, youtubeURL)
	if err != nil {
		if yt.verbose && result != nil {
			fmt.Printf("Metadata extraction error: %v\nStderr: %s\n", err, result.Stderr)
		}
		return nil, fmt.Errorf("extracting video metadata: %w", err)
	}

	var metadata VideoMetadata
	if err := json.Unmarshal([]byte(result.Stdout), &metadata); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}

	// Keep the raw payload alongside the typed fields; the chunk store
	// persists it so compact fields can be re-derived later.
	var raw map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &raw); err != nil {
		return nil, fmt.Errorf("parsing video metadata: %w", err)
	}
	metadata.Raw = raw

	if yt.verbose {
		fmt.Printf("Title: %s\nChannel: %s\nDuration: %.0f seconds\n",
			metadata.Title, metadata.Channel, metadata.Duration)
	}

	return &metadata, nil
}

// Audio downloads the best available audio track as mp3 and returns the
// local file path. The file is left in the cache directory; segments created
// for transcription are cleaned up separately.
func (yt *YouTube) Audio(ctx context.Context, youtubeURL, videoID string) (string, error) {
	if yt.verbose {
		fmt.Println("Downloading audio...")
	}

	if err := EnsureDirs(yt.cacheDir); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	outputPath := filepath.Join(yt.cacheDir, "%(id)s.%(ext)s")

	dl := ytdlp.New().
		Format("bestaudio").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("10").
		Output(outputPath)

	result, err := dl.Run(ctx, youtubeURL)
	if err != nil {
		if yt.verbose && result != nil {
			fmt.Printf("Audio download error: %v\nStderr: %s\n", err, result.Stderr)
		}
		return "", fmt.Errorf("downloading audio: %w", err)
	}

	return filepath.Join(yt.cacheDir, videoID+".mp3"), nil
}

// Captions fetches the video's English caption track and returns it as plain
// text: caption entries in original order, newline-collapsed and trimmed,
// joined by newlines. Returns ErrNoCaptions when captions are disabled,
// absent, or the captions client cannot run here.
func (yt *YouTube) Captions(ctx context.Context, youtubeURL, videoID string) (string, error) {
	if !captionsUsable() {
		if yt.verbose {
			fmt.Println("Captions client unavailable, skipping caption fetch")
		}
		return "", ErrNoCaptions
	}

	if err := EnsureDirs(yt.cacheDir); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	outputPath := filepath.Join(yt.cacheDir, "%(id)s")

	dl := ytdlp.New().
		WriteSubs().
		WriteAutoSubs().
		SubLangs("en,en-US,en-GB").
		ConvertSubs("srt").
		SkipDownload().
		Output(outputPath)

	if _, err := dl.Run(ctx, youtubeURL); err != nil {
		// yt-dlp does not distinguish "disabled" from "none uploaded";
		// both mean the chain should fall through to audio.
		if yt.verbose {
			fmt.Printf("Caption download failed: %v\n", err)
		}
		return "", ErrNoCaptions
	}

	pattern := filepath.Join(yt.cacheDir, videoID+"*.srt")
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return "", ErrNoCaptions
	}

	content, err := os.ReadFile(files[0])
	if err != nil {
		return "", fmt.Errorf("reading caption file: %w", err)
	}

	cleanupFiles(files...)

	entries := parseSRT(string(content))
	entries = dropRepeatedEntries(entries)
	text := strings.TrimSpace(strings.Join(entries, "\n"))
	if text == "" {
		return "", ErrNoCaptions
	}

	return text, nil
}

// parseSRT extracts the ordered text entries from SRT content, collapsing
// embedded newlines and trimming each entry.
func parseSRT(content string) []string {
	var entries []string

	for block := range strings.SplitSeq(content, "\n\n") {
		blockLines := strings.Split(block, "\n")
		if len(blockLines) < 3 {
			continue
		}
		// Skip the sequence number and timestamp lines.
		for i := 2; i < len(blockLines); i++ {
			line := strings.TrimSpace(strings.ReplaceAll(blockLines[i], "\n", " "))
			if line != "" {
				entries = append(entries, line)
			}
		}
	}

	return entries
}

// dropRepeatedEntries eliminates the consecutive overlapping lines that
// auto-generated caption tracks produce.
func dropRepeatedEntries(entries []string) []string {
	result := make([]string, 0, len(entries))
	prev := ""

	for _, entry := range entries {
		repeated := prev != "" && (strings.Contains(entry, prev) || strings.Contains(prev, entry))
		if !repeated {
			result = append(result, entry)
		}
		prev = entry
	}

	return result
}
