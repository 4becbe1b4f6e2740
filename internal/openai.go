package internal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// embeddingModel produces 1536-dimension vectors; the documents table's
// vector column is sized to match.
const embeddingModel = openai.EmbeddingModelTextEmbedding3Small

// OpenAIClientInterface defines the interface for OpenAI client operations
type OpenAIClientInterface interface {
	CreateTranscription(ctx context.Context, file *os.File) (string, error)
	CreateChatCompletion(ctx context.Context, model, prompt string) (string, error)
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// CreateTranscription implements the transcription method
func (c *OpenAIClient) CreateTranscription(ctx context.Context, file *os.File) (string, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// CreateChatCompletion implements the chat completion method
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	var oaiModel openai.ChatModel
	switch model {
	case "gpt-4o":
		oaiModel = openai.ChatModelGPT4o
	case "gpt-4o-mini":
		oaiModel = openai.ChatModelGPT4oMini
	case "o4-mini":
		oaiModel = openai.ChatModelO4Mini
	case "gpt-4.1-nano":
		oaiModel = openai.ChatModelGPT4_1Nano
	default:
		return "", fmt.Errorf("unsupported model: %s", model)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: oaiModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// CreateEmbeddings implements the batch embedding method
func (c *OpenAIClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			vec[j] = float32(f)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// AI handles OpenAI API interactions: transcription, embeddings, and
// answer/brief generation.
type AI struct {
	client         OpenAIClientInterface
	audio          *Audio
	model          string
	whisperLimit   int64
	whisperTimeout time.Duration
	answerTimeout  time.Duration
	verbose        bool
	apiKey         string
	clientOnce     sync.Once
}

// NewAI creates a new AI processor
func NewAI(client OpenAIClientInterface, audio *Audio, model string, whisperLimit int64, whisperTimeout, answerTimeout time.Duration, verbose bool) *AI {
	return &AI{
		client:         client,
		audio:          audio,
		model:          model,
		whisperLimit:   whisperLimit,
		whisperTimeout: whisperTimeout,
		answerTimeout:  answerTimeout,
		verbose:        verbose,
	}
}

// NewAIWithKey creates a new AI processor with lazy client initialization
func NewAIWithKey(apiKey string, audio *Audio, model string, whisperLimit int64, whisperTimeout, answerTimeout time.Duration, verbose bool) *AI {
	return &AI{
		audio:          audio,
		model:          model,
		whisperLimit:   whisperLimit,
		whisperTimeout: whisperTimeout,
		answerTimeout:  answerTimeout,
		verbose:        verbose,
		apiKey:         apiKey,
	}
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	if ai.client != nil {
		return nil
	}

	if ai.apiKey == "" {
		return ValidateOpenAIAPIKey("")
	}

	ai.clientOnce.Do(func() {
		ai.client = NewOpenAIClient(ai.apiKey)
	})

	return nil
}

// Transcribe transcribes an audio file using OpenAI's Whisper API. Files
// over the upload ceiling are split into floor(size/limit)+1 equal-duration
// segments, transcribed in order, and joined with a blank line.
func (ai *AI) Transcribe(ctx context.Context, audioFile string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, ai.whisperTimeout)
	defer cancel()

	if ai.verbose {
		fmt.Printf("Transcribing audio file: %s\n", audioFile)
	}

	info, err := os.Stat(audioFile)
	if err != nil {
		return "", fmt.Errorf("getting audio file info: %w", err)
	}

	segments := []string{audioFile}
	if info.Size() > ai.whisperLimit {
		numSegments := int(info.Size()/ai.whisperLimit) + 1
		segments, err = ai.audio.SplitEven(ctx, audioFile, numSegments)
		if err != nil {
			return "", fmt.Errorf("splitting audio: %w", err)
		}
	}

	defer func() {
		if len(segments) > 1 {
			cleanupFiles(segments...)
		}
	}()

	transcript, err := ai.transcribeSegments(ctx, segments)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return transcript, nil
}

// transcribeSegments transcribes audio segments sequentially, preserving
// chronological order.
func (ai *AI) transcribeSegments(ctx context.Context, segments []string) (string, error) {
	if ai.verbose {
		fmt.Printf("Transcribing segments (%d)\n", len(segments))
	}

	texts := make([]string, 0, len(segments))
	for i, segmentPath := range segments {
		file, err := os.Open(segmentPath)
		if err != nil {
			return "", fmt.Errorf("opening segment %s: %w", segmentPath, err)
		}

		text, err := ai.client.CreateTranscription(ctx, file)
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file %s: %v\n", segmentPath, closeErr)
		}
		if err != nil {
			return "", fmt.Errorf("transcribing segment %d: %w", i+1, err)
		}

		texts = append(texts, text)

		if ai.verbose {
			fmt.Printf("Transcribed segment %d/%d\n", i+1, len(segments))
		}
	}

	return strings.Join(texts, "\n\n"), nil
}

// Generate produces text from a prompt using the configured chat model
func (ai *AI) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, ai.answerTimeout)
	defer cancel()

	content, err := ai.client.CreateChatCompletion(ctx, ai.model, prompt)
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	return content, nil
}

// EmbedBatch computes one embedding vector per text in a single call
func (ai *AI) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := ai.client.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}
	return vectors, nil
}

// EmbedOne computes the embedding vector for a single text
func (ai *AI) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := ai.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}
