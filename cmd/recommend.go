package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vidbrief/vidbrief/internal"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend [YouTube URL or ID]",
	Short: "Suggest follow-up learning steps after a video",
	Long: `Recommend suggests concrete follow-up learning steps after watching an
ingested video: search queries, topics to explore, and kinds of videos to
look for. An optional learning goal steers the suggestions.`,
	Example: `  # Get follow-up suggestions
  vidbrief recommend tAP1eZYEuKA

  # Steer them with a learning goal
  vidbrief recommend tAP1eZYEuKA --goal "become better at negotiation"`,
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

		goal, _ := cmd.Flags().GetString("goal")
		recommendations, err := app.Recommend(cmd.Context(), args[0], goal)
		if err != nil {
			return err
		}

		return printMarkdown(recommendations)
	},
}

func init() {
	internal.AddOpenAIFlags(recommendCmd)
	recommendCmd.Flags().String("goal", "", "Optional learning goal to steer the recommendations")
	rootCmd.AddCommand(recommendCmd)
}
