package internal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// Chunk is one stored transcript slice with its video-level metadata.
// Chunks for one video share identical metadata except Content.
type Chunk struct {
	Content  string
	Metadata map[string]any
}

// Embedder turns texts into vectors for storage and similarity search
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// ChunkStore persists transcript chunks with embeddings and serves the two
// retrieval modes: ranked similarity search and exact full scan by video.
type ChunkStore interface {
	CountForVideo(ctx context.Context, videoID string) (int, error)
	Store(ctx context.Context, videoID, title, url string, chunks []string, rawMeta map[string]any) (int, error)
	SimilaritySearch(ctx context.Context, query, videoID string, k int) ([]Chunk, error)
	AllChunks(ctx context.Context, videoID string) ([]Chunk, error)
	MetadataFor(ctx context.Context, videoID string) (map[string]any, error)
}

// migrations run in order on startup; each statement is idempotent
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		content TEXT NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		embedding VECTOR(1536)
	)`,
	`CREATE INDEX IF NOT EXISTS documents_metadata_idx ON documents USING GIN (metadata jsonb_path_ops)`,
}

// PostgresStore implements ChunkStore on Postgres with the pgvector
// extension: metadata containment for per-video queries, `<=>` distance
// for nearest-neighbor search.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder Embedder
	verbose  bool
}

// NewPostgresStore connects, registers the vector codec, and applies
// migrations.
func NewPostgresStore(ctx context.Context, databaseURL string, embedder Embedder, verbose bool) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required - set it in config.toml or the DATABASE_URL environment variable")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migration: %w", err)
		}
	}

	return &PostgresStore{pool: pool, embedder: embedder, verbose: verbose}, nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CountForVideo reports how many chunks are already stored for a video.
// Ingestion uses this as its dedup gate.
func (s *PostgresStore) CountForVideo(ctx context.Context, videoID string) (int, error) {
	filter, err := videoFilter(videoID)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.pool.QueryRow(ctx,
		`SELECT count(*) FROM documents WHERE metadata @> $1`, filter).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Store embeds all chunks in one batch call, builds the shared video-level
// metadata once, and writes one row per chunk. There is no rollback: a
// failure mid-batch leaves the rows already written.
func (s *PostgresStore) Store(ctx context.Context, videoID, title, url string, chunks []string, rawMeta map[string]any) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	metadata := buildChunkMetadata(videoID, title, url, rawMeta)
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("encoding chunk metadata: %w", err)
	}

	if s.verbose {
		fmt.Printf("Embedding %d chunks...\n", len(chunks))
	}
	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	for i, content := range chunks {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO documents (content, metadata, embedding) VALUES ($1, $2, $3)`,
			content, metadataJSON, pgvector.NewVector(vectors[i]))
		if err != nil {
			return i, fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}

	if s.verbose {
		fmt.Printf("Stored %d chunks for %s\n", len(chunks), videoID)
	}
	return len(chunks), nil
}

// SimilaritySearch embeds the query and returns the k nearest chunks.
// The nearest-neighbor query has no native per-video filter, so a scoped
// search over-fetches max(3k, k+10) candidates, filters on the video ID,
// and truncates to k. When a video's chunks are sparse among the global
// neighbors this can return fewer than k; that is accepted rather than
// widening iteratively.
func (s *PostgresStore) SimilaritySearch(ctx context.Context, query, videoID string, k int) ([]Chunk, error) {
	vec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, err
	}

	fetch := k
	if videoID != "" {
		fetch = max(3*k, k+10)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content, metadata FROM documents ORDER BY embedding <=> $1 LIMIT $2`,
		pgvector.NewVector(vec), fetch)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	docs, err := scanChunks(rows)
	if err != nil {
		return nil, err
	}

	docs = filterByVideo(docs, videoID, k)
	if s.verbose {
		fmt.Printf("Retrieved %d chunks after filtering\n", len(docs))
	}
	return docs, nil
}

// AllChunks returns every stored chunk for one video: exact, unordered,
// unranked. Used for whole-video tasks and as the retrieval fallback when
// similarity search comes up empty for a known video.
func (s *PostgresStore) AllChunks(ctx context.Context, videoID string) ([]Chunk, error) {
	filter, err := videoFilter(videoID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT content, metadata FROM documents WHERE metadata @> $1`, filter)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}

	return scanChunks(rows)
}

// MetadataFor loads the shared metadata record for a video from any one of
// its chunks, or nil when the video has none.
func (s *PostgresStore) MetadataFor(ctx context.Context, videoID string) (map[string]any, error) {
	filter, err := videoFilter(videoID)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = s.pool.QueryRow(ctx,
		`SELECT metadata FROM documents WHERE metadata @> $1 LIMIT 1`, filter).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	var metadata map[string]any
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return metadata, nil
}

func scanChunks(rows pgx.Rows) ([]Chunk, error) {
	defer rows.Close()

	var docs []Chunk
	for rows.Next() {
		var content string
		var raw []byte
		if err := rows.Scan(&content, &raw); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		var metadata map[string]any
		if err := json.Unmarshal(raw, &metadata); err != nil {
			return nil, fmt.Errorf("decoding chunk metadata: %w", err)
		}
		docs = append(docs, Chunk{Content: content, Metadata: metadata})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	return docs, nil
}

// videoFilter builds the jsonb containment argument for one video
func videoFilter(videoID string) ([]byte, error) {
	filter, err := json.Marshal(map[string]string{"youtube_id": videoID})
	if err != nil {
		return nil, fmt.Errorf("encoding video filter: %w", err)
	}
	return filter, nil
}

// filterByVideo keeps chunks tagged with videoID (all chunks when the scope
// is empty) and truncates the result to k.
func filterByVideo(docs []Chunk, videoID string, k int) []Chunk {
	if videoID != "" {
		filtered := docs[:0:0]
		for _, d := range docs {
			if stringField(d.Metadata, "youtube_id") == videoID {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}
	if len(docs) > k {
		docs = docs[:k]
	}
	return docs
}

// buildChunkMetadata assembles the video-level metadata shared by every
// chunk of one video. The raw provider payload is retained whole as a
// derivation source; compact fields are pulled out of it once here.
func buildChunkMetadata(videoID, title, url string, rawMeta map[string]any) map[string]any {
	metadata := map[string]any{
		"youtube_id": videoID,
		"title":      title,
		"url":        url,
		"source":     "vidbrief",
	}

	if rawMeta != nil {
		if d := floatField(rawMeta, "duration"); d != 0 {
			metadata["duration_seconds"] = d
		}
		channel := stringField(rawMeta, "channel")
		if channel == "" {
			channel = stringField(rawMeta, "uploader")
		}
		if channel != "" {
			metadata["channel"] = channel
		}
		if published := normalizeUploadDate(stringField(rawMeta, "upload_date")); published != "" {
			metadata["published_at"] = published
		}
		metadata["raw_meta"] = rawMeta
	}

	return metadata
}
