package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Audio handles audio file operations using FFmpeg
type Audio struct {
	cmdRunner CommandRunner
	tempDir   string
	verbose   bool
}

// NewAudio creates a new audio processor
func NewAudio(cmdRunner CommandRunner, tempDir string, verbose bool) *Audio {
	return &Audio{
		cmdRunner: cmdRunner,
		tempDir:   tempDir,
		verbose:   verbose,
	}
}

// DurationMS returns the audio file duration in milliseconds
func (a *Audio) DurationMS(ctx context.Context, audioFile string) (int64, error) {
	output, err := a.cmdRunner.Run(ctx, "ffprobe",
		"-i", audioFile,
		"-show_entries", "format=duration",
		"-v", "quiet",
		"-of", "csv=p=0")

	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\nOutput: %s", err, string(output))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing duration: %w", err)
	}

	return int64(seconds * 1000), nil
}

// SplitEven divides an audio file into numSegments segments of roughly equal
// duration. Boundaries are computed on a per-millisecond timeline, not on
// silence detection, so a segment can start mid-word.
func (a *Audio) SplitEven(ctx context.Context, audioFile string, numSegments int) ([]string, error) {
	if err := EnsureDirs(a.tempDir); err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	durationMS, err := a.DurationMS(ctx, audioFile)
	if err != nil {
		return nil, fmt.Errorf("getting audio duration: %w", err)
	}

	segmentMS := durationMS / int64(numSegments)
	segments := make([]string, 0, numSegments)

	for i := range numSegments {
		startMS := int64(i) * segmentMS
		lengthMS := segmentMS
		if i == numSegments-1 {
			lengthMS = durationMS - startMS
		}

		output := filepath.Join(a.tempDir, fmt.Sprintf("%s_part%d.mp3", filepath.Base(audioFile), i))
		if err := a.extract(ctx, audioFile, startMS, lengthMS, output); err != nil {
			cleanupFiles(segments...)
			return nil, fmt.Errorf("creating segment %d: %w", i, err)
		}
		segments = append(segments, output)
	}

	return segments, nil
}

// extract copies a [start, start+length) slice of an audio file
func (a *Audio) extract(ctx context.Context, audioFile string, startMS, lengthMS int64, output string) error {
	cmdOutput, err := a.cmdRunner.Run(ctx, "ffmpeg",
		"-v", "quiet",
		"-i", audioFile,
		"-ss", formatMS(startMS),
		"-t", formatMS(lengthMS),
		"-c:a", "copy",
		"-y", output)

	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, string(cmdOutput))
	}
	return nil
}

// formatMS renders milliseconds as fractional seconds for ffmpeg
func formatMS(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}
