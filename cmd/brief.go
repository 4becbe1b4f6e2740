package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/vidbrief/vidbrief/internal"
)

// briefCmd represents the brief command
var briefCmd = &cobra.Command{
	Use:   "brief [YouTube URL or ID]",
	Short: "Generate a one-page brief for a video",
	Long: `Brief generates the fixed-template one-page Markdown brief for a video.

The video is ingested first if it is not in the knowledge base yet. The
brief's title, Generated timestamp, source line, and channel line are
always filled from stored metadata, regardless of what the model wrote.

With -o ending in .pdf the brief is rendered as a paginated PDF;
any other -o value writes the Markdown to that file.`,
	Example: `  # Print the brief to the terminal
  vidbrief brief tAP1eZYEuKA

  # Render the brief as PDF
  vidbrief brief tAP1eZYEuKA -o brief.pdf

  # Save the Markdown and copy it to the clipboard
  vidbrief brief tAP1eZYEuKA -o brief.md --copy`,
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

		brief, err := app.Brief(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if copyFlag, _ := cmd.Flags().GetBool("copy"); copyFlag {
			if err := clipboard.WriteAll(brief); err != nil {
				fmt.Printf("Warning: failed to copy brief to clipboard: %v\n", err)
			} else if !config.Quiet {
				fmt.Println("Brief copied to clipboard.")
			}
		}

		outputFile, _ := cmd.Flags().GetString("output")
		switch {
		case strings.HasSuffix(outputFile, ".pdf"):
			if err := internal.RenderBriefPDF(brief, outputFile); err != nil {
				return err
			}
			if !config.Quiet {
				fmt.Printf("Brief saved to %s\n", outputFile)
			}
			return nil
		case outputFile != "":
			if err := writeFile(outputFile, brief); err != nil {
				return err
			}
			if !config.Quiet {
				fmt.Printf("Brief saved to %s\n", outputFile)
			}
			return nil
		default:
			return printMarkdown(brief)
		}
	},
}

func init() {
	internal.AddOpenAIFlags(briefCmd)
	briefCmd.Flags().StringP("output", "o", "", "Output file path; .pdf renders a PDF, anything else saves Markdown")
	briefCmd.Flags().Bool("copy", false, "Copy the Markdown brief to the clipboard")
	rootCmd.AddCommand(briefCmd)
}
