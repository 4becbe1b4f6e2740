package internal

import (
	"context"
	"fmt"
)

// App holds the application state and dependencies
type App struct {
	youtube  *YouTube
	audio    *Audio
	ai       *AI
	store    ChunkStore
	session  *Session
	acquirer *TranscriptAcquirer
	router   *Router
	composer *BriefComposer
	config   *Config
	ui       UIManager
}

// NewApp initializes the application and connects to the knowledge base
func NewApp(ctx context.Context, config *Config, options ...AppOption) (*App, error) {
	cmdRunner := &DefaultCommandRunner{}

	audio := NewAudio(cmdRunner, config.TempDir, config.Verbose)
	ui := NewUIManager(config.Verbose, config.Quiet)

	app := &App{
		youtube: NewYouTube(config.CacheDir, config.Verbose),
		audio:   audio,
		ai:      NewAIWithKey(config.OpenAIAPIKey, audio, config.Model, WhisperLimit, config.WhisperTimeout, config.AnswerTimeout, config.Verbose),
		session: NewSession(),
		config:  config,
		ui:      ui,
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	if app.store == nil {
		store, err := NewPostgresStore(ctx, config.DatabaseURL, app.ai, config.Verbose)
		if err != nil {
			return nil, err
		}
		app.store = store
	}

	app.acquirer = NewTranscriptAcquirer(app.youtube, app.ai, config.Verbose)
	app.router = NewRouter(app.store, app.ai, app.session, config.Verbose)

	tmpl, err := LoadBriefTemplate(config)
	if err != nil {
		return nil, err
	}
	ingest := func(ctx context.Context, youtubeURL string) error {
		_, err := app.Ingest(ctx, youtubeURL)
		return err
	}
	app.composer = NewBriefComposer(app.store, app.ai, ingest, tmpl, config.Verbose)

	return app, nil
}

// AppOption customizes App creation
type AppOption func(*App)

// WithYouTube sets a custom YouTube downloader
func WithYouTube(youtube *YouTube) AppOption {
	return func(a *App) {
		a.youtube = youtube
	}
}

// WithAI sets a custom AI processor
func WithAI(ai *AI) AppOption {
	return func(a *App) {
		a.ai = ai
	}
}

// WithStore sets a custom chunk store
func WithStore(store ChunkStore) AppOption {
	return func(a *App) {
		a.store = store
	}
}

// Close releases held resources
func (app *App) Close() {
	if store, ok := app.store.(*PostgresStore); ok {
		store.Close()
	}
}

// IngestResult reports what ingestion did for one video
type IngestResult struct {
	VideoID         string
	Title           string
	ChunkCount      int
	AlreadyIngested bool
}

// Ingest puts one video into the knowledge base: metadata, transcript,
// chunking, embedding, storage. A video whose chunks are already stored is
// skipped entirely; ingestion is idempotent at the video level.
func (app *App) Ingest(ctx context.Context, arg string) (*IngestResult, error) {
	videoID, err := ExtractVideoID(arg)
	if err != nil {
		return nil, err
	}

	count, err := app.store.CountForVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		app.session.SetCurrent(videoID)
		metadata, err := app.store.MetadataFor(ctx, videoID)
		if err != nil {
			return nil, err
		}
		return &IngestResult{
			VideoID:         videoID,
			Title:           BuildMetadataView(videoID, metadata).Title,
			ChunkCount:      count,
			AlreadyIngested: true,
		}, nil
	}

	youtubeURL := WatchURL(arg)

	bar := app.ui.NewProgressBar(3, "Ingesting video")
	defer bar.Finish()

	bar.Describe("Fetching metadata")
	metadata, err := app.youtube.Metadata(ctx, youtubeURL)
	if err != nil {
		return nil, err
	}
	bar.Set(1)

	bar.Describe("Acquiring transcript")
	transcript, err := app.acquirer.Fetch(ctx, youtubeURL, videoID)
	if err != nil {
		return nil, err
	}
	bar.Set(2)

	chunks := ChunkText(transcript, app.config.ChunkSize, app.config.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcript for %s produced no chunks", videoID)
	}

	url := metadata.WebpageURL
	if url == "" {
		url = youtubeURL
	}

	bar.Describe("Embedding and storing chunks")
	stored, err := app.store.Store(ctx, videoID, metadata.Title, url, chunks, metadata.Raw)
	if err != nil {
		return nil, err
	}
	bar.Set(3)

	app.session.SetCurrent(videoID)
	return &IngestResult{
		VideoID:    videoID,
		Title:      metadata.Title,
		ChunkCount: stored,
	}, nil
}

// Ask answers a question about an ingested video
func (app *App) Ask(ctx context.Context, question, videoHint string) (string, error) {
	return app.router.Answer(ctx, question, videoHint)
}

// Search runs a raw similarity search and returns the formatted hits
func (app *App) Search(ctx context.Context, query, videoHint string) (string, error) {
	return app.router.SearchChunks(ctx, query, videoHint)
}

// Brief generates the one-page brief for a video
func (app *App) Brief(ctx context.Context, videoHint string) (string, error) {
	if videoID, err := ExtractVideoID(videoHint); err == nil {
		app.session.SetCurrent(videoID)
	}
	return app.composer.Compose(ctx, videoHint)
}

// Recommend suggests follow-up learning steps after a video
func (app *App) Recommend(ctx context.Context, videoHint, learningGoal string) (string, error) {
	return app.router.Recommend(ctx, videoHint, learningGoal)
}

// Metadata returns the compact metadata view for a video, preferring the
// stored record and falling back to a live lookup for unknown videos.
func (app *App) Metadata(ctx context.Context, arg string) (*MetadataView, error) {
	videoID, err := ExtractVideoID(arg)
	if err != nil {
		return nil, err
	}
	app.session.SetCurrent(videoID)

	stored, err := app.store.MetadataFor(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		metadata, err := app.youtube.Metadata(ctx, WatchURL(arg))
		if err != nil {
			return nil, err
		}
		url := metadata.WebpageURL
		if url == "" {
			url = WatchURL(arg)
		}
		stored = buildChunkMetadata(videoID, metadata.Title, url, metadata.Raw)
	}

	view := BuildMetadataView(videoID, stored)
	return &view, nil
}

// Transcript acquires a transcript without storing anything
func (app *App) Transcript(ctx context.Context, arg string) (string, error) {
	videoID, err := ExtractVideoID(arg)
	if err != nil {
		return "", err
	}
	return app.acquirer.Fetch(ctx, WatchURL(arg), videoID)
}

// CurrentVideo returns the session's current video ID, or "" when none is set
func (app *App) CurrentVideo() string {
	return app.session.Current()
}
