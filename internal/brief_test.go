package internal

import (
	"context"
	"strings"
	"testing"
	"text/template"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFacts() BriefFacts {
	return BriefFacts{
		Title:       "Negotiation Masterclass",
		Speaker:     "Jane Speaker",
		URL:         "https://youtu.be/tAP1eZYEuKA",
		Channel:     "Talks Weekly",
		GeneratedAt: "2026-08-31 10:30",
	}
}

func TestPatchBriefRewritesProvenanceLines(t *testing.T) {
	brief := strings.Join([]string{
		"# [Video Brief - Video Title (Speaker)]",
		"",
		"Generated: Unknown",
		"",
		"## The Main Idea",
		"",
		"Something insightful.",
		"",
		"## Source, Links & References",
		"",
		"- Original video (title + URL): [Video Title] - [Video URL]",
		"- Creator / Channel:",
	}, "\n")

	patched := PatchBrief(brief, testFacts())
	lines := strings.Split(patched, "\n")

	assert.Equal(t, "# Video Brief - Negotiation Masterclass (Jane Speaker)", lines[0])
	assert.Equal(t, "Generated: 2026-08-31 10:30", lines[2])
	assert.Contains(t, patched, "- Original video (title + URL): Negotiation Masterclass - https://youtu.be/tAP1eZYEuKA")
	assert.Contains(t, patched, "- Creator / Channel: Talks Weekly")
	// The body is untouched.
	assert.Contains(t, patched, "Something insightful.")
}

func TestPatchBriefNoSpeaker(t *testing.T) {
	facts := testFacts()
	facts.Speaker = ""
	patched := PatchBrief("# anything", facts)
	assert.True(t, strings.HasPrefix(patched, "# Video Brief - Negotiation Masterclass\n"))
	assert.NotContains(t, strings.Split(patched, "\n")[0], "(")
}

func TestPatchBriefUnknownChannel(t *testing.T) {
	facts := testFacts()
	facts.Channel = ""
	patched := PatchBrief("# t\n- Creator / Channel: Made Up Name", facts)
	assert.Contains(t, patched, "- Creator / Channel: Unknown")
	assert.NotContains(t, patched, "Made Up Name")
}

func TestPatchBriefInsertsGeneratedAfterHeading(t *testing.T) {
	brief := "# Some Title\n\n## The Main Idea\n\ntext"
	patched := PatchBrief(brief, testFacts())
	lines := strings.Split(patched, "\n")

	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "# Video Brief - Negotiation Masterclass (Jane Speaker)", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Generated: 2026-08-31 10:30", lines[2])
	assert.Contains(t, patched, "## The Main Idea")
}

func TestPatchBriefNoHeadingPrepends(t *testing.T) {
	brief := "Just some text the model wrote.\nMore text."
	patched := PatchBrief(brief, testFacts())
	lines := strings.Split(patched, "\n")

	assert.Equal(t, "# Video Brief - Negotiation Masterclass (Jane Speaker)", lines[0])
	assert.Equal(t, "Generated: 2026-08-31 10:30", lines[2])
	assert.Contains(t, patched, "Just some text the model wrote.")
}

func TestPatchBriefOnlyFirstHeadingPatched(t *testing.T) {
	brief := "# Model Title\n\nGenerated: whenever\n\n## Top Insights\n\n- one"
	patched := PatchBrief(brief, testFacts())

	assert.Contains(t, patched, "## Top Insights")
	assert.Equal(t, 1, strings.Count(patched, "# Video Brief - Negotiation Masterclass"))
}

func testComposer(store ChunkStore, gen Generator, ingest IngestFunc) *BriefComposer {
	tmpl := template.Must(template.New("brief").Parse("Write a brief from:\n{{.Transcript}}"))
	c := NewBriefComposer(store, gen, ingest, tmpl, false)
	c.now = func() time.Time { return time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC) }
	return c
}

func TestComposeGeneratesAndPatches(t *testing.T) {
	store := newFakeStore()
	store.chunks["tAP1eZYEuKA"] = []Chunk{
		{Content: "part one"},
		{Content: "part two"},
	}
	store.metadata["tAP1eZYEuKA"] = map[string]any{
		"youtube_id": "tAP1eZYEuKA",
		"title":      "Negotiation Masterclass",
		"url":        "https://youtu.be/tAP1eZYEuKA",
		"channel":    "Talks Weekly",
	}
	gen := &fakeGenerator{reply: "# [Video Brief - Video Title (Speaker)]\n\nGenerated: Unknown\n\n## The Main Idea\n\ntext\n\n- Creator / Channel:"}

	composer := testComposer(store, gen, nil)
	brief, err := composer.Compose(context.Background(), "tAP1eZYEuKA")
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "part one\n\npart two")
	lines := strings.Split(brief, "\n")
	assert.Equal(t, "# Video Brief - Negotiation Masterclass", lines[0])
	assert.Equal(t, "Generated: 2026-08-31 10:30", lines[2])
	assert.Contains(t, brief, "- Creator / Channel: Talks Weekly")
}

func TestComposeIngestsUnknownVideo(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{reply: "# brief"}

	ingest := func(ctx context.Context, youtubeURL string) error {
		assert.Equal(t, "https://www.youtube.com/watch?v=tAP1eZYEuKA", youtubeURL)
		_, err := store.Store(ctx, "tAP1eZYEuKA", "Title", "https://youtu.be/tAP1eZYEuKA",
			[]string{"transcript words"}, nil)
		return err
	}

	composer := testComposer(store, gen, ingest)
	brief, err := composer.Compose(context.Background(), "tAP1eZYEuKA")
	require.NoError(t, err)

	assert.Equal(t, 1, store.storeCalls)
	assert.Contains(t, brief, "# Video Brief - Title")
}

func TestComposeUnknownVideoWithoutIngest(t *testing.T) {
	composer := testComposer(newFakeStore(), &fakeGenerator{reply: "unused"}, nil)

	brief, err := composer.Compose(context.Background(), "tAP1eZYEuKA")
	require.NoError(t, err)
	assert.Equal(t, "I could not find or ingest this video to generate a brief.", brief)
}

func TestComposeFallbacksWhenMetadataMissing(t *testing.T) {
	store := newFakeStore()
	store.chunks["tAP1eZYEuKA"] = []Chunk{{Content: "words"}}
	gen := &fakeGenerator{reply: "# brief\n\n- Original video (title + URL): x - y"}

	composer := testComposer(store, gen, nil)
	brief, err := composer.Compose(context.Background(), "tAP1eZYEuKA")
	require.NoError(t, err)

	assert.Contains(t, brief, "# Video Brief - (title unknown)")
	assert.Contains(t, brief, "- Original video (title + URL): (title unknown) - https://youtu.be/tAP1eZYEuKA")
}
