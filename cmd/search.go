package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vidbrief/vidbrief/internal"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored transcript chunks",
	Long: `Search runs a raw similarity search over the stored transcript chunks
and prints the matching chunks without any answer generation.`,
	Example: `  # Search across all ingested videos
  vidbrief search "compound interest"

  # Search within one video
  vidbrief search "compound interest" --video tAP1eZYEuKA`,
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
		results, err := app.Search(cmd.Context(), args[0], video)
		if err != nil {
			return err
		}

		fmt.Println(results)
		return nil
	},
}

func init() {
	internal.AddOpenAIFlags(searchCmd)
	internal.AddVideoFlag(searchCmd)
	rootCmd.AddCommand(searchCmd)
}
