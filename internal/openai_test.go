package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpenAIClient counts API calls and records whether each one ran under
// a context deadline.
type fakeOpenAIClient struct {
	transcriptReply string
	chatReply       string

	transcribeCalls int
	chatCalls       int
	embedCalls      int

	transcribeDeadline bool
	chatDeadline       bool
}

func (c *fakeOpenAIClient) CreateTranscription(ctx context.Context, file *os.File) (string, error) {
	c.transcribeCalls++
	_, c.transcribeDeadline = ctx.Deadline()
	return c.transcriptReply, nil
}

func (c *fakeOpenAIClient) CreateChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	c.chatCalls++
	_, c.chatDeadline = ctx.Deadline()
	return c.chatReply, nil
}

func (c *fakeOpenAIClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	c.embedCalls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{0}
	}
	return vectors, nil
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0644))
	return path
}

func TestTranscribeRunsUnderWhisperTimeout(t *testing.T) {
	client := &fakeOpenAIClient{transcriptReply: "hello world"}
	ai := NewAI(client, nil, "gpt-4o-mini", WhisperLimit, 10*time.Minute, time.Minute, false)

	text, err := ai.Transcribe(context.Background(), writeTempAudio(t))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
	assert.Equal(t, 1, client.transcribeCalls)
	assert.True(t, client.transcribeDeadline, "transcription should run under the whisper timeout")
}

func TestGenerateRunsUnderAnswerTimeout(t *testing.T) {
	client := &fakeOpenAIClient{chatReply: "an answer"}
	ai := NewAI(client, nil, "gpt-4o-mini", WhisperLimit, 10*time.Minute, time.Minute, false)

	reply, err := ai.Generate(context.Background(), "a question")
	require.NoError(t, err)
	assert.Equal(t, "an answer", reply)
	assert.True(t, client.chatDeadline, "generation should run under the answer timeout")
}

func TestTranscribeMissingFile(t *testing.T) {
	client := &fakeOpenAIClient{}
	ai := NewAI(client, nil, "gpt-4o-mini", WhisperLimit, time.Minute, time.Minute, false)

	_, err := ai.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	require.Error(t, err)
	assert.Zero(t, client.transcribeCalls)
}
