package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vidbrief/vidbrief/internal"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [YouTube URL or ID]",
	Short: "Ingest a video into the knowledge base",
	Long: `Ingest fetches a video's transcript (captions first, Whisper fallback),
chunks it, embeds the chunks, and stores them in the knowledge base.

Ingestion is idempotent: a video whose chunks are already stored is
skipped. The ingested video becomes the current video for follow-up
questions.`,
	Example: `  # Ingest a video
  vidbrief ingest "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  vidbrief ingest tAP1eZYEuKA`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}
		return runIngest(cmd, args[0])
	},
}

func runIngest(cmd *cobra.Command, arg string) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Ingest(cmd.Context(), arg)
	if err != nil {
		return err
	}

	ui := internal.NewUIManager(config.Verbose, config.Quiet)
	if result.AlreadyIngested {
		ui.Printf("Video %s is already in the knowledge base (%d chunks).\n", result.VideoID, result.ChunkCount)
	} else {
		ui.Printf("Ingested %s: %d chunks stored.\n", result.VideoID, result.ChunkCount)
	}
	if result.Title != "" {
		ui.Printf("Title: %s\n", result.Title)
	}
	return nil
}

func init() {
	internal.AddOpenAIFlags(ingestCmd)
	rootCmd.AddCommand(ingestCmd)
}
