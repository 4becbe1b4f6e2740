package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AddOpenAIFlags adds flags related to OpenAI API functionality
func AddOpenAIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "OpenAI model to use for answers and briefs")
}

// AddVideoFlag adds the flag that scopes an operation to one video
func AddVideoFlag(cmd *cobra.Command) {
	cmd.Flags().String("video", "", "YouTube URL or video ID to scope the question to")
}

// HandleVerboseFlag processes the --verbose flag to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	config.Verbose = verbose
	return nil
}

// ValidateOpenAIRequirements validates OpenAI API key and model from command flags and config
func ValidateOpenAIRequirements(cmd *cobra.Command, config *Config) error {
	if err := ValidateOpenAIAPIKey(config.OpenAIAPIKey); err != nil {
		return err
	}

	modelFlag, _ := cmd.Flags().GetString("model")
	if modelFlag != "" {
		if err := ValidateModel(modelFlag); err != nil {
			return err
		}
		config.Model = modelFlag
	} else if err := ValidateModel(config.Model); err != nil {
		return fmt.Errorf("invalid model in config: %w", err)
	}

	return nil
}
