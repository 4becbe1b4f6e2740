package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Generator produces text from a natural-language prompt. It is treated as
// a black box; the router never parses structured output from it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuestionKind classifies what a question is really asking about
type QuestionKind int

const (
	QuestionContent QuestionKind = iota
	QuestionMetadata
	QuestionRecommendation
)

func (k QuestionKind) String() string {
	switch k {
	case QuestionMetadata:
		return "metadata"
	case QuestionRecommendation:
		return "recommendation"
	default:
		return "content"
	}
}

// metadataPhrases are the fixed patterns that mark a question as being
// about the video record rather than its content.
var metadataPhrases = []string{
	"title of the video",
	"video title",
	"name of the video",
	"what is the title",
	"what's the title",
	"who is the speaker",
	"who's the speaker",
	"who is speaking",
	"who is the host",
	"how long is the video",
	"how long is it",
	"what is the duration",
	"video duration",
	"when was this video published",
	"when was it published",
	"when was this uploaded",
	"upload date",
	"publish date",
}

var recommendationPhrases = []string{
	"recommend me similar videos",
	"recommend similar videos",
	"similar videos",
	"similar video",
	"what should i watch next",
	"what else should i watch",
	"follow-up videos",
	"related videos",
	"more like this",
	"next video to watch",
}

// ClassifyQuestion is a pure function of the question text: metadata intent
// first, then recommendation, then content as the default. First match wins,
// so a question with both metadata and recommendation phrasing is metadata.
func ClassifyQuestion(question string) QuestionKind {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, phrase := range metadataPhrases {
		if strings.Contains(q, phrase) {
			return QuestionMetadata
		}
	}
	if strings.Contains(q, "channel") || strings.Contains(q, "url") || strings.Contains(q, "link") {
		return QuestionMetadata
	}

	for _, phrase := range recommendationPhrases {
		if strings.Contains(q, phrase) {
			return QuestionRecommendation
		}
	}
	if strings.Contains(q, "recommend") &&
		(strings.Contains(q, "video") || strings.Contains(q, "watch") || strings.Contains(q, "content")) {
		return QuestionRecommendation
	}

	return QuestionContent
}

// Router answers questions about ingested videos by dispatching to the
// strategy matching the question kind.
type Router struct {
	store   ChunkStore
	ai      Generator
	session *Session
	verbose bool
}

// NewRouter creates a question router
func NewRouter(store ChunkStore, ai Generator, session *Session, verbose bool) *Router {
	return &Router{store: store, ai: ai, session: session, verbose: verbose}
}

// resolveScope picks the video scope for a question: the explicit hint when
// given (an unparseable hint leaves the scope empty), else the session's
// current video.
func (r *Router) resolveScope(videoHint string) string {
	if videoHint == "" {
		return r.session.Current()
	}

	videoID, err := ExtractVideoID(videoHint)
	if err != nil {
		if r.verbose {
			fmt.Printf("Could not parse video hint %q: %v\n", videoHint, err)
		}
		return ""
	}
	r.session.SetCurrent(videoID)
	return videoID
}

// Answer classifies the question and runs the matching strategy
func (r *Router) Answer(ctx context.Context, question, videoHint string) (string, error) {
	videoID := r.resolveScope(videoHint)

	kind := ClassifyQuestion(question)
	if r.verbose {
		fmt.Printf("Question classified as %s (video scope: %q)\n", kind, videoID)
	}

	switch kind {
	case QuestionMetadata:
		return r.answerMetadata(ctx, question, videoID)
	case QuestionRecommendation:
		return r.answerRecommendation(ctx, question, videoID)
	default:
		return r.answerContent(ctx, question, videoID)
	}
}

func (r *Router) answerMetadata(ctx context.Context, question, videoID string) (string, error) {
	if videoID == "" {
		return "I don't know which video you mean. Please either ingest a video first or provide a specific YouTube URL or ID.", nil
	}

	metadata, err := r.store.MetadataFor(ctx, videoID)
	if err != nil {
		return "", err
	}
	if metadata == nil {
		return fmt.Sprintf("I couldn't find stored metadata for this video (id=%s).", videoID), nil
	}

	view := BuildMetadataView(videoID, metadata)
	viewJSON, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding metadata view: %w", err)
	}

	prompt := fmt.Sprintf(`You are vidbrief. The user asked a question about video METADATA
(not about the content / ideas of the video).

Here is the stored metadata for the video, as JSON:
%s

Here are the same fields with unknown values spelled out:
%s

User question:
%s

Answer the question using ONLY this metadata. If something is missing or
marked Unknown, say you are not sure rather than inventing a value.
Answer in 1-3 concise sentences.`, viewJSON, view.FormatFields(), question)

	return r.ai.Generate(ctx, prompt)
}

func (r *Router) answerRecommendation(ctx context.Context, question, videoID string) (string, error) {
	if videoID == "" {
		return "I don't know which video to base recommendations on. Please provide a YouTube URL or ingest a video first.", nil
	}

	docs, err := r.store.AllChunks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "I couldn't find any stored chunks for this video, so I can't generate recommendations yet.", nil
	}

	prompt := recommendationPrompt(videoID, question, "", docs)
	return r.ai.Generate(ctx, prompt)
}

func (r *Router) answerContent(ctx context.Context, question, videoID string) (string, error) {
	docs, err := r.store.SimilaritySearch(ctx, question, videoID, 6)
	if err != nil {
		return "", err
	}

	// Similarity search can miss a known video entirely when its chunks are
	// sparse among the global neighbors; the full scan still has them.
	if len(docs) == 0 && videoID != "" {
		if r.verbose {
			fmt.Println("Similarity search returned nothing, falling back to full scan")
		}
		docs, err = r.store.AllChunks(ctx, videoID)
		if err != nil {
			return "", err
		}
	}

	if len(docs) == 0 {
		return "No matching chunks found in the knowledge base.", nil
	}

	var chunkContext strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&chunkContext, "[Chunk %d] %s\n\n", i+1, doc.Content)
	}

	prompt := fmt.Sprintf(`You are vidbrief, an assistant that answers questions about YouTube videos
using their transcript chunks.

Use ONLY the information from the provided chunks to answer the question.
If the answer is not clearly in the chunks, say that you are not sure.

Relevant chunks:
%s
User question:
%s

Answer in a clear, concise way, 3-7 sentences maximum.`, chunkContext.String(), question)

	return r.ai.Generate(ctx, prompt)
}

// Recommend suggests follow-up learning steps for a video, optionally
// conditioned on a free-text learning goal.
func (r *Router) Recommend(ctx context.Context, videoHint, learningGoal string) (string, error) {
	videoID, err := ExtractVideoID(videoHint)
	if err != nil {
		return "", err
	}
	r.session.SetCurrent(videoID)

	docs, err := r.store.AllChunks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "I couldn't find any stored chunks for this video, so I can't generate recommendations yet.", nil
	}

	prompt := recommendationPrompt(videoID, "", learningGoal, docs)
	return r.ai.Generate(ctx, prompt)
}

// SearchChunks runs a raw scoped similarity search and formats the hits as
// numbered context blocks.
func (r *Router) SearchChunks(ctx context.Context, query, videoHint string) (string, error) {
	videoID := r.resolveScope(videoHint)

	docs, err := r.store.SimilaritySearch(ctx, query, videoID, 6)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "No matching chunks found in the knowledge base.", nil
	}

	formatted := make([]string, len(docs))
	for i, doc := range docs {
		formatted[i] = fmt.Sprintf("[Chunk %d]\n%s", i+1, doc.Content)
	}
	return strings.Join(formatted, "\n\n---\n\n"), nil
}

// recommendationPrompt builds the learning-coach prompt from up to five
// chunks of transcript context.
func recommendationPrompt(videoID, question, learningGoal string, docs []Chunk) string {
	contextDocs := docs
	if len(contextDocs) > 5 {
		contextDocs = contextDocs[:5]
	}
	texts := make([]string, len(contextDocs))
	for i, doc := range contextDocs {
		texts[i] = doc.Content
	}
	excerpt := strings.Join(texts, "\n\n")

	var intro string
	if question != "" {
		intro = fmt.Sprintf("A user has just watched a YouTube video (id=%s) and asked:\n\n%s", videoID, question)
	} else {
		goal := learningGoal
		if goal == "" {
			goal = "(none given)"
		}
		intro = fmt.Sprintf("A user has just watched a YouTube video (id=%s) and ingested it into the system.\nThey may have the following learning goal (optional):\n\nLearning goal: %s", videoID, goal)
	}

	return fmt.Sprintf(`You are a learning coach inside vidbrief.

%s

Here are a few chunks from the video transcript for context:
"""%s"""

Suggest 3-7 concrete follow-up learning steps, including:
- Search queries they could type into YouTube or Google
- Concrete topics or subskills to explore next
- Optional: types of videos (tutorial, case study, lecture, etc.)

Return the answer as a Markdown bullet list.`, intro, excerpt)
}
