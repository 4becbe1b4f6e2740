package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidbrief/vidbrief/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [YouTube URL or ID]",
	Short: "Fetch a video's transcript without storing it",
	Long: `Transcribe acquires a transcript the same way ingestion does, captions
first and Whisper transcription as fallback, but prints it instead of
storing it in the knowledge base.`,
	Example: `  # Print the transcript
  vidbrief transcribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"

  # Save it to a file
  vidbrief transcribe tAP1eZYEuKA -o transcript.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateOpenAIRequirements(cmd, config); err != nil {
			return err
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		transcript, err := app.Transcript(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return writeFile(outputFile, transcript)
		}

		fmt.Println(transcript)
		return nil
	},
}

func init() {
	internal.AddOpenAIFlags(transcribeCmd)
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(transcribeCmd)
}
