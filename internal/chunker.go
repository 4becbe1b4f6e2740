package internal

import "strings"

// Default chunking parameters for transcript ingestion.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 200
)

// ChunkText splits whitespace-tokenized text into overlapping word windows.
// Each window holds up to chunkSize words and the window start advances by
// max(1, chunkSize-overlap) words, so an overlap >= chunkSize cannot stall
// the loop. Empty input yields no chunks.
func ChunkText(text string, chunkSize, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := max(1, chunkSize-overlap)

	var chunks []string
	for start := 0; start < len(words); start += step {
		end := min(start+chunkSize, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
