package internal

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory ChunkStore for router and brief tests.
type fakeStore struct {
	chunks        map[string][]Chunk
	metadata      map[string]map[string]any
	searchResults []Chunk
	storeCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		chunks:   make(map[string][]Chunk),
		metadata: make(map[string]map[string]any),
	}
}

func (f *fakeStore) CountForVideo(ctx context.Context, videoID string) (int, error) {
	return len(f.chunks[videoID]), nil
}

func (f *fakeStore) Store(ctx context.Context, videoID, title, url string, chunks []string, rawMeta map[string]any) (int, error) {
	f.storeCalls++
	metadata := buildChunkMetadata(videoID, title, url, rawMeta)
	for _, content := range chunks {
		f.chunks[videoID] = append(f.chunks[videoID], Chunk{Content: content, Metadata: metadata})
	}
	f.metadata[videoID] = metadata
	return len(chunks), nil
}

func (f *fakeStore) SimilaritySearch(ctx context.Context, query, videoID string, k int) ([]Chunk, error) {
	return filterByVideo(f.searchResults, videoID, k), nil
}

func (f *fakeStore) AllChunks(ctx context.Context, videoID string) ([]Chunk, error) {
	return f.chunks[videoID], nil
}

func (f *fakeStore) MetadataFor(ctx context.Context, videoID string) (map[string]any, error) {
	return f.metadata[videoID], nil
}

// fakeGenerator records the prompt it was given and returns a canned reply.
type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func TestClassifyQuestion(t *testing.T) {
	tests := []struct {
		question string
		want     QuestionKind
	}{
		{"What is the title of the video?", QuestionMetadata},
		{"who is the speaker in this one", QuestionMetadata},
		{"How long is the video?", QuestionMetadata},
		{"When was this uploaded?", QuestionMetadata},
		{"what's the upload date", QuestionMetadata},
		{"Which channel is this from?", QuestionMetadata},
		{"Give me the url please", QuestionMetadata},
		{"Can you share the link?", QuestionMetadata},

		{"Recommend me similar videos", QuestionRecommendation},
		{"what should i watch next?", QuestionRecommendation},
		{"Any follow-up videos?", QuestionRecommendation},
		{"more like this", QuestionRecommendation},
		{"can you recommend content on this topic", QuestionRecommendation},

		{"What are the main takeaways?", QuestionContent},
		{"Summarize the argument about pricing", QuestionContent},
		{"recommend a good book", QuestionContent},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyQuestion(tt.question))
		})
	}
}

func TestClassifyQuestionMetadataWinsOverRecommendation(t *testing.T) {
	// Contains both a metadata cue ("channel") and a recommendation phrase;
	// metadata is checked first.
	q := "What channel has similar videos to this one's title?"
	assert.Equal(t, QuestionMetadata, ClassifyQuestion(q))
}

func TestAnswerContentNoChunks(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{reply: "unused"}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Answer(context.Background(), "What are the takeaways?", "")
	require.NoError(t, err)
	assert.Equal(t, "No matching chunks found in the knowledge base.", answer)
	assert.Empty(t, gen.prompt)
}

func TestAnswerContentUsesChunks(t *testing.T) {
	store := newFakeStore()
	store.searchResults = []Chunk{
		{Content: "pricing is about perceived value", Metadata: map[string]any{"youtube_id": "tAP1eZYEuKA"}},
		{Content: "anchor high then concede", Metadata: map[string]any{"youtube_id": "tAP1eZYEuKA"}},
	}
	gen := &fakeGenerator{reply: "Pricing reflects perceived value."}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Answer(context.Background(), "What does it say about pricing?", "tAP1eZYEuKA")
	require.NoError(t, err)
	assert.Equal(t, "Pricing reflects perceived value.", answer)
	assert.Contains(t, gen.prompt, "[Chunk 1] pricing is about perceived value")
	assert.Contains(t, gen.prompt, "[Chunk 2] anchor high then concede")
	assert.Contains(t, gen.prompt, "What does it say about pricing?")
}

func TestAnswerContentFallsBackToFullScan(t *testing.T) {
	store := newFakeStore()
	store.chunks["tAP1eZYEuKA"] = []Chunk{
		{Content: "full scan chunk", Metadata: map[string]any{"youtube_id": "tAP1eZYEuKA"}},
	}
	gen := &fakeGenerator{reply: "answer"}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Answer(context.Background(), "What is covered?", "tAP1eZYEuKA")
	require.NoError(t, err)
	assert.Equal(t, "answer", answer)
	assert.Contains(t, gen.prompt, "full scan chunk")
}

func TestAnswerMetadataWithoutScope(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{reply: "unused"}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Answer(context.Background(), "What is the title of the video?", "")
	require.NoError(t, err)
	assert.Contains(t, answer, "I don't know which video you mean")
	assert.Empty(t, gen.prompt)
}

func TestAnswerMetadataUsesStoredMetadata(t *testing.T) {
	store := newFakeStore()
	store.metadata["tAP1eZYEuKA"] = map[string]any{
		"youtube_id": "tAP1eZYEuKA",
		"title":      "Negotiation Masterclass",
		"channel":    "Talks Weekly",
	}
	gen := &fakeGenerator{reply: "The title is Negotiation Masterclass."}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Answer(context.Background(), "What is the title of the video?", "tAP1eZYEuKA")
	require.NoError(t, err)
	assert.Equal(t, "The title is Negotiation Masterclass.", answer)
	assert.Contains(t, gen.prompt, "Negotiation Masterclass")
	assert.Contains(t, gen.prompt, "Talks Weekly")
}

func TestAnswerMetadataMissingRecord(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{reply: "unused"}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Answer(context.Background(), "who is the speaker?", "tAP1eZYEuKA")
	require.NoError(t, err)
	assert.Contains(t, answer, "couldn't find stored metadata")
}

func TestAnswerRecommendationWithoutChunks(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{reply: "unused"}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Answer(context.Background(), "recommend similar videos", "tAP1eZYEuKA")
	require.NoError(t, err)
	assert.Contains(t, answer, "can't generate recommendations yet")
}

func TestAnswerUsesSessionScope(t *testing.T) {
	store := newFakeStore()
	store.metadata["tAP1eZYEuKA"] = map[string]any{"youtube_id": "tAP1eZYEuKA", "title": "Some Talk"}
	gen := &fakeGenerator{reply: "ok"}
	session := NewSession()
	session.SetCurrent("tAP1eZYEuKA")
	router := NewRouter(store, gen, session, false)

	_, err := router.Answer(context.Background(), "what is the title of the video?", "")
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "Some Talk")
}

func TestAnswerHintUpdatesSession(t *testing.T) {
	store := newFakeStore()
	store.metadata["otherVideo1"] = map[string]any{"youtube_id": "otherVideo1"}
	gen := &fakeGenerator{reply: "ok"}
	session := NewSession()
	session.SetCurrent("tAP1eZYEuKA")
	router := NewRouter(store, gen, session, false)

	_, err := router.Answer(context.Background(), "what is the title of the video?", "otherVideo1")
	require.NoError(t, err)
	assert.Equal(t, "otherVideo1", session.Current())
}

func TestRecommendBuildsLearningCoachPrompt(t *testing.T) {
	store := newFakeStore()
	for i := range 7 {
		store.chunks["tAP1eZYEuKA"] = append(store.chunks["tAP1eZYEuKA"],
			Chunk{Content: fmt.Sprintf("chunk %d", i)})
	}
	gen := &fakeGenerator{reply: "- watch a tutorial"}
	router := NewRouter(store, gen, NewSession(), false)

	answer, err := router.Recommend(context.Background(), "tAP1eZYEuKA", "get better at pricing")
	require.NoError(t, err)
	assert.Equal(t, "- watch a tutorial", answer)
	assert.Contains(t, gen.prompt, "Learning goal: get better at pricing")
	// Only the first five chunks go into the prompt.
	assert.Contains(t, gen.prompt, "chunk 4")
	assert.NotContains(t, gen.prompt, "chunk 5")
}

func TestSearchChunksFormatsHits(t *testing.T) {
	store := newFakeStore()
	store.searchResults = []Chunk{
		{Content: "first hit", Metadata: map[string]any{"youtube_id": "tAP1eZYEuKA"}},
		{Content: "second hit", Metadata: map[string]any{"youtube_id": "tAP1eZYEuKA"}},
	}
	router := NewRouter(store, &fakeGenerator{}, NewSession(), false)

	out, err := router.SearchChunks(context.Background(), "hit", "")
	require.NoError(t, err)
	assert.Equal(t, "[Chunk 1]\nfirst hit\n\n---\n\n[Chunk 2]\nsecond hit", out)
}

func TestSearchChunksEmpty(t *testing.T) {
	router := NewRouter(newFakeStore(), &fakeGenerator{}, NewSession(), false)

	out, err := router.SearchChunks(context.Background(), "anything", "")
	require.NoError(t, err)
	assert.Equal(t, "No matching chunks found in the knowledge base.", out)
}

func TestAnswerGeneratorErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.searchResults = []Chunk{{Content: "chunk", Metadata: map[string]any{"youtube_id": "v"}}}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	router := NewRouter(store, gen, NewSession(), false)

	_, err := router.Answer(context.Background(), "what happened?", "")
	assert.ErrorContains(t, err, "model unavailable")
}
