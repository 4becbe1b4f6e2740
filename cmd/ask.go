package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vidbrief/vidbrief/internal"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about an ingested video",
	Long: `Ask answers a question against the knowledge base.

Questions about the video record (title, speaker, duration, channel,
upload date, URL) are answered from stored metadata. Requests for similar
videos or what to watch next produce recommendations. Everything else is
answered from the transcript chunks.

Without --video the question is scoped to the current video, the one
most recently ingested or asked about in this process.`,
	Example: `  # Ask about the current video
  vidbrief ask "What are the main takeaways?"

  # Ask about a specific video
  vidbrief ask "Who is the speaker?" --video tAP1eZYEuKA`,
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

		video, _ := cmd.Flags().GetString("video")
		answer, err := app.Ask(cmd.Context(), args[0], video)
		if err != nil {
			return err
		}

		return printMarkdown(answer)
	},
}

// printMarkdown renders markdown to the terminal when stdout is a TTY and
// prints it raw otherwise, so piped output stays plain text.
func printMarkdown(content string) error {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		rendered, err := internal.RenderMarkdown(content)
		if err == nil {
			fmt.Print(rendered)
			return nil
		}
	}
	fmt.Println(content)
	return nil
}

func init() {
	internal.AddOpenAIFlags(askCmd)
	internal.AddVideoFlag(askCmd)
	rootCmd.AddCommand(askCmd)
}
