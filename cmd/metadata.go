package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [YouTube URL or ID]",
	Short: "Show the compact metadata view for a video",
	Long: `Metadata prints the compact metadata view for a video: title, URL,
channel, speaker, duration, and publish date. Stored metadata is used when
the video is ingested; otherwise a live lookup is performed.`,
	Example: `  # Show metadata as labeled fields
  vidbrief metadata tAP1eZYEuKA

  # Show metadata as JSON
  vidbrief metadata tAP1eZYEuKA --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		view, err := app.Metadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding metadata: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Println(view.FormatFields())
		return nil
	},
}

func init() {
	metadataCmd.Flags().Bool("json", false, "Output metadata as JSON")
	rootCmd.AddCommand(metadataCmd)
}
