package cmd

import (
	"github.com/spf13/cobra"
)

// manualCmd explains how to edit the configuration by hand.
var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Show how to edit the configuration by hand",
	Long: `Prints the project root, the path of the .env file and the settings
most often changed by hand. Fails when the file does not exist yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		application, err := newApplication(cmd)
		if err != nil {
			return err
		}
		return application.Manual()
	},
}

func init() {
	rootCmd.AddCommand(manualCmd)
}
