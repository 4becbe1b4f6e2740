package internal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText("", DefaultChunkSize, DefaultChunkOverlap))
	assert.Nil(t, ChunkText("   \n\t ", DefaultChunkSize, DefaultChunkOverlap))
}

func TestChunkTextSingleChunk(t *testing.T) {
	chunks := ChunkText(words(100), DefaultChunkSize, DefaultChunkOverlap)
	require.Len(t, chunks, 1)
	assert.Equal(t, words(100), chunks[0])
}

func TestChunkTextOverlappingWindows(t *testing.T) {
	// 1900 words with size 800 and overlap 200 means the start advances by
	// 600: windows at 0, 600, 1200, and 1800.
	chunks := ChunkText(words(1900), 800, 200)
	require.Len(t, chunks, 4)

	assert.Len(t, strings.Fields(chunks[0]), 800)
	assert.Len(t, strings.Fields(chunks[1]), 800)
	assert.Len(t, strings.Fields(chunks[2]), 700)
	assert.Len(t, strings.Fields(chunks[3]), 100)

	// Consecutive chunks share the 200-word overlap region.
	assert.True(t, strings.HasPrefix(chunks[1], "w600 "))
	assert.True(t, strings.HasSuffix(chunks[0], " w799"))
	assert.Contains(t, chunks[1], "w799")
}

func TestChunkTextDeterministic(t *testing.T) {
	text := words(2500)
	first := ChunkText(text, 800, 200)
	second := ChunkText(text, 800, 200)
	assert.Equal(t, first, second)
}

func TestChunkTextOverlapAtLeastStepOne(t *testing.T) {
	// overlap >= chunkSize would stall the window; the step is clamped to 1.
	chunks := ChunkText(words(5), 3, 3)
	require.Len(t, chunks, 5)
	assert.Equal(t, "w0 w1 w2", chunks[0])
	assert.Equal(t, "w4", chunks[4])
}

func TestChunkTextNormalizesWhitespace(t *testing.T) {
	chunks := ChunkText("one\n two\t\tthree   four", 10, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "one two three four", chunks[0])
}
