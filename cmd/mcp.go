package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidbrief/vidbrief/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server for vidbrief",
	Long: `Run a Model Context Protocol (MCP) server that exposes vidbrief
functionality as tools.

The MCP server provides these tools:
- ingest_video: put a video into the knowledge base
- video_chat: ask a question about an ingested video
- semantic_search: raw similarity search over stored chunks
- generate_brief: generate the one-page Markdown brief
- recommend_followups: suggest follow-up learning steps
- video_metadata: compact metadata view as JSON

Transport options:
- stdio (default): Standard MCP transport via stdin/stdout
- http: HTTP transport on specified port (use --port to configure)`,
	Example: `  # Run MCP server with stdio transport
  vidbrief mcp

  # Run MCP server with HTTP transport on port 8080
  vidbrief mcp --transport=http --port=8080`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// MCP uses stdio protocol, so disable verbose logging
		config.Verbose = false
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		internal.InitMCPLogging(config)

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		mcpServer := internal.NewMCPServer(app)

		if config.Verbose {
			if transport == "http" {
				fmt.Printf("Starting vidbrief MCP server on HTTP port %d...\n", port)
			} else {
				fmt.Println("Starting vidbrief MCP server on stdio...")
			}
		}

		// Start the server (this will block until context is cancelled)
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
