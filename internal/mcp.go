package internal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App) *MCPServer {
	mcpServer := server.NewMCPServer(
		"vidbrief-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("ingest_video",
		mcp.WithDescription("Ingest a YouTube video into the knowledge base: fetch the transcript (captions first, Whisper fallback), chunk it, embed it, and store it. Idempotent: a video that is already ingested is skipped. The ingested video becomes the current video for follow-up questions."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
	), s.handleIngest)

	s.mcpServer.AddTool(mcp.NewTool("video_chat",
		mcp.WithDescription("Ask a question about an ingested video. Questions about the video record (title, speaker, duration, channel, upload date, URL) are answered from stored metadata; requests for similar videos or what to watch next produce recommendations; everything else is answered from the transcript chunks."),
		mcp.WithString("question",
			mcp.Description("The question to answer"),
			mcp.Required(),
		),
		mcp.WithString("video",
			mcp.Description("Optional YouTube URL or video ID to scope the question to; defaults to the current video"),
		),
	), s.handleChat)

	s.mcpServer.AddTool(mcp.NewTool("semantic_search",
		mcp.WithDescription("Run a raw similarity search over stored transcript chunks and return the matching chunks without any answer generation. Useful for inspecting what the knowledge base contains."),
		mcp.WithString("query",
			mcp.Description("Free-text search query"),
			mcp.Required(),
		),
		mcp.WithString("video",
			mcp.Description("Optional YouTube URL or video ID to scope the search to"),
		),
	), s.handleSearch)

	s.mcpServer.AddTool(mcp.NewTool("generate_brief",
		mcp.WithDescription("Generate the fixed-template one-page Markdown brief for a video. Ingests the video first if it is not in the knowledge base yet."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or video ID"),
			mcp.Required(),
		),
	), s.handleBrief)

	s.mcpServer.AddTool(mcp.NewTool("recommend_followups",
		mcp.WithDescription("Suggest follow-up learning steps after watching an ingested video, optionally guided by a learning goal."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or video ID"),
			mcp.Required(),
		),
		mcp.WithString("goal",
			mcp.Description("Optional free-text learning goal"),
		),
	), s.handleRecommend)

	s.mcpServer.AddTool(mcp.NewTool("video_metadata",
		mcp.WithDescription("Return the compact metadata view for a video (title, URL, channel, speaker, duration, publish date) as JSON. Uses stored metadata when the video is ingested, otherwise a live lookup."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or video ID"),
			mcp.Required(),
		),
	), s.handleMetadata)
}

// handleIngest implements the ingest_video tool
func (s *MCPServer) handleIngest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	MCPLogInfo("ingest_video: %s", url)
	result, err := s.app.Ingest(ctx, url)
	if err != nil {
		MCPLogError("ingest_video failed: %v", err)
		return mcp.NewToolResultErrorFromErr("ingestion failed", err), nil
	}

	var text string
	if result.AlreadyIngested {
		text = fmt.Sprintf("Video %s (%s) is already in the knowledge base with %d chunks.",
			result.VideoID, result.Title, result.ChunkCount)
	} else {
		text = fmt.Sprintf("Ingested video %s (%s): %d chunks stored.",
			result.VideoID, result.Title, result.ChunkCount)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}, nil
}

// handleChat implements the video_chat tool
func (s *MCPServer) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required and must be a string"), nil
	}
	video := request.GetString("video", "")

	MCPLogInfo("video_chat: %q (video=%q)", question, video)
	answer, err := s.app.Ask(ctx, question, video)
	if err != nil {
		MCPLogError("video_chat failed: %v", err)
		return mcp.NewToolResultErrorFromErr("answering failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(answer)},
	}, nil
}

// handleSearch implements the semantic_search tool
func (s *MCPServer) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required and must be a string"), nil
	}
	video := request.GetString("video", "")

	MCPLogInfo("semantic_search: %q (video=%q)", query, video)
	results, err := s.app.Search(ctx, query, video)
	if err != nil {
		MCPLogError("semantic_search failed: %v", err)
		return mcp.NewToolResultErrorFromErr("search failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(results)},
	}, nil
}

// handleBrief implements the generate_brief tool
func (s *MCPServer) handleBrief(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	MCPLogInfo("generate_brief: %s", url)
	brief, err := s.app.Brief(ctx, url)
	if err != nil {
		MCPLogError("generate_brief failed: %v", err)
		return mcp.NewToolResultErrorFromErr("brief generation failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(brief)},
	}, nil
}

// handleRecommend implements the recommend_followups tool
func (s *MCPServer) handleRecommend(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	goal := request.GetString("goal", "")

	MCPLogInfo("recommend_followups: %s (goal=%q)", url, goal)
	recommendations, err := s.app.Recommend(ctx, url, goal)
	if err != nil {
		MCPLogError("recommend_followups failed: %v", err)
		return mcp.NewToolResultErrorFromErr("recommendation failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(recommendations)},
	}, nil
}

// handleMetadata implements the video_metadata tool
func (s *MCPServer) handleMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}

	MCPLogInfo("video_metadata: %s", url)
	view, err := s.app.Metadata(ctx, url)
	if err != nil {
		MCPLogError("video_metadata failed: %v", err)
		return mcp.NewToolResultErrorFromErr("metadata lookup failed", err), nil
	}

	viewJSON, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return mcp.NewToolResultErrorFromErr("encoding metadata failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(string(viewJSON))},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}
