package internal

import (
	"context"
	"errors"
	"fmt"
)

// TranscriptSource tries one way of obtaining a transcript. Returning
// ("", nil) means the source is not available for this video and the next
// source should be tried; a non-nil error aborts the whole chain.
type TranscriptSource struct {
	Name  string
	Fetch func(ctx context.Context, youtubeURL, videoID string) (string, error)
}

// TranscriptAcquirer runs an ordered chain of transcript sources; the first
// non-empty result wins. This is fallback, not retry: each source is a
// materially different acquisition method.
type TranscriptAcquirer struct {
	sources []TranscriptSource
	verbose bool
}

// NewTranscriptAcquirer builds the default chain: captions first, then
// audio download plus Whisper transcription.
func NewTranscriptAcquirer(youtube *YouTube, ai *AI, verbose bool) *TranscriptAcquirer {
	captions := TranscriptSource{
		Name: "captions",
		Fetch: func(ctx context.Context, youtubeURL, videoID string) (string, error) {
			text, err := youtube.Captions(ctx, youtubeURL, videoID)
			if errors.Is(err, ErrNoCaptions) {
				return "", nil
			}
			return text, err
		},
	}

	whisper := TranscriptSource{
		Name: "whisper",
		Fetch: func(ctx context.Context, youtubeURL, videoID string) (string, error) {
			audioFile, err := youtube.Audio(ctx, youtubeURL, videoID)
			if err != nil {
				return "", err
			}
			return ai.Transcribe(ctx, audioFile)
		},
	}

	return &TranscriptAcquirer{
		sources: []TranscriptSource{captions, whisper},
		verbose: verbose,
	}
}

// NewTranscriptAcquirerWithSources builds an acquirer over a custom chain
func NewTranscriptAcquirerWithSources(verbose bool, sources ...TranscriptSource) *TranscriptAcquirer {
	return &TranscriptAcquirer{sources: sources, verbose: verbose}
}

// Fetch tries each source in order and returns the first non-empty
// transcript. It fails only when a source errors hard or every source
// comes up empty.
func (t *TranscriptAcquirer) Fetch(ctx context.Context, youtubeURL, videoID string) (string, error) {
	for _, source := range t.sources {
		if t.verbose {
			fmt.Printf("Trying transcript source: %s\n", source.Name)
		}

		text, err := source.Fetch(ctx, youtubeURL, videoID)
		if err != nil {
			return "", fmt.Errorf("transcript source %s: %w", source.Name, err)
		}
		if text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("no transcript could be acquired for %s", videoID)
}
