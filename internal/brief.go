package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// briefPromptData is the data passed to the brief prompt template
type briefPromptData struct {
	Transcript string
}

// LoadBriefTemplate resolves the brief prompt template: an explicit path
// from config wins, then a user-edited copy in the config directory, then
// the embedded default.
func LoadBriefTemplate(config *Config) (*template.Template, error) {
	var content []byte
	var err error

	switch {
	case config.BriefTemplate != "":
		content, err = os.ReadFile(config.BriefTemplate)
		if err != nil {
			return nil, fmt.Errorf("reading brief template %s: %w", config.BriefTemplate, err)
		}
	case FileExists(filepath.Join(config.ConfigDir, "brief.tmpl")):
		content, err = os.ReadFile(filepath.Join(config.ConfigDir, "brief.tmpl"))
		if err != nil {
			return nil, fmt.Errorf("reading brief template: %w", err)
		}
	default:
		content, err = defaultFS.ReadFile("brief.tmpl")
		if err != nil {
			return nil, fmt.Errorf("reading embedded brief template: %w", err)
		}
	}

	tmpl, err := template.New("brief").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing brief template: %w", err)
	}
	return tmpl, nil
}

// BriefFacts are the known-true values stamped onto a generated brief,
// overriding whatever the model wrote for those lines.
type BriefFacts struct {
	Title       string
	Speaker     string
	URL         string
	Channel     string
	GeneratedAt string
}

// PatchBrief deterministically rewrites the header and provenance lines of
// a generated brief so they reflect stored metadata rather than the model's
// guesses. It patches, in place:
//   - the first "#" heading line
//   - the "Generated:" line (inserted under the heading if missing)
//   - the "- Original video (title + URL):" line
//   - the "- Creator / Channel:" line
//
// A brief with no heading at all gets the heading and Generated line
// prepended, so the result always starts with both.
func PatchBrief(brief string, facts BriefFacts) string {
	header := "# Video Brief - " + facts.Title
	if facts.Speaker != "" {
		header += " (" + facts.Speaker + ")"
	}
	generatedLine := "Generated: " + facts.GeneratedAt
	sourceLine := fmt.Sprintf("- Original video (title + URL): %s - %s", facts.Title, facts.URL)
	creatorLine := "- Creator / Channel: " + orUnknown(facts.Channel)

	lines := strings.Split(brief, "\n")
	headerIdx := -1
	generatedIdx := -1

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case headerIdx == -1 && strings.HasPrefix(trimmed, "#"):
			lines[i] = header
			headerIdx = i
		case generatedIdx == -1 && strings.HasPrefix(trimmed, "Generated:"):
			lines[i] = generatedLine
			generatedIdx = i
		case strings.HasPrefix(trimmed, "- Original video"):
			lines[i] = sourceLine
		case strings.HasPrefix(trimmed, "- Creator / Channel:"):
			lines[i] = creatorLine
		}
	}

	if headerIdx == -1 {
		return header + "\n\n" + generatedLine + "\n\n" + strings.Join(lines, "\n")
	}
	if generatedIdx == -1 {
		patched := make([]string, 0, len(lines)+2)
		patched = append(patched, lines[:headerIdx+1]...)
		patched = append(patched, "", generatedLine)
		patched = append(patched, lines[headerIdx+1:]...)
		lines = patched
	}
	return strings.Join(lines, "\n")
}

// IngestFunc ingests a video by URL so a brief can be generated for a video
// that is not in the knowledge base yet.
type IngestFunc func(ctx context.Context, youtubeURL string) error

// BriefComposer generates the fixed-template one-page brief for a video
type BriefComposer struct {
	store    ChunkStore
	ai       Generator
	ingest   IngestFunc
	template *template.Template
	now      func() time.Time
	verbose  bool
}

// NewBriefComposer creates a brief composer. ingest may be nil, in which
// case missing videos are reported instead of ingested on demand.
func NewBriefComposer(store ChunkStore, ai Generator, ingest IngestFunc, tmpl *template.Template, verbose bool) *BriefComposer {
	return &BriefComposer{
		store:    store,
		ai:       ai,
		ingest:   ingest,
		template: tmpl,
		now:      time.Now,
		verbose:  verbose,
	}
}

// Compose builds the brief for a video: load its chunks (ingesting on
// demand if the video is unknown), generate the templated brief from the
// full transcript, then patch the provenance lines from stored metadata.
func (b *BriefComposer) Compose(ctx context.Context, videoHint string) (string, error) {
	videoID, err := ExtractVideoID(videoHint)
	if err != nil {
		return "", err
	}

	docs, err := b.store.AllChunks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 && b.ingest != nil {
		if b.verbose {
			fmt.Printf("Video %s not in knowledge base, ingesting first\n", videoID)
		}
		if err := b.ingest(ctx, WatchURL(videoID)); err != nil {
			return "", fmt.Errorf("ingesting video for brief: %w", err)
		}
		docs, err = b.store.AllChunks(ctx, videoID)
		if err != nil {
			return "", err
		}
	}
	if len(docs) == 0 {
		return "I could not find or ingest this video to generate a brief.", nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	fullText := strings.Join(texts, "\n\n")

	var prompt strings.Builder
	if err := b.template.Execute(&prompt, briefPromptData{Transcript: fullText}); err != nil {
		return "", fmt.Errorf("rendering brief prompt: %w", err)
	}

	brief, err := b.ai.Generate(ctx, prompt.String())
	if err != nil {
		return "", fmt.Errorf("generating brief: %w", err)
	}

	metadata, err := b.store.MetadataFor(ctx, videoID)
	if err != nil {
		return "", err
	}
	view := BuildMetadataView(videoID, metadata)

	title := view.Title
	if title == "" {
		title = "(title unknown)"
	}
	url := view.URL
	if url == "" {
		url = ShortURL(videoID)
	}

	return PatchBrief(brief, BriefFacts{
		Title:       title,
		Speaker:     view.Speaker,
		URL:         url,
		Channel:     view.Channel,
		GeneratedAt: b.now().Format("2006-01-02 15:04"),
	}), nil
}
