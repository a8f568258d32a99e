package cmd

import (
	"github.com/spf13/cobra"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Pixelle server",
	Long: `Starts the Pixelle server with the saved configuration.

The command fails when no complete configuration exists; run
'pixelle reconfig' first. If the configured port is already taken, the
process holding it is shown and you are asked whether to stop it. Without
a terminal the defaults are used: the process is stopped, and the server
is not started if it cannot be.

Press Ctrl+C to stop the server.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, _ []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	p, release, err := newPrompter(cmd)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := commandContext(cmd)
	defer cancel()
	_, err = application.Start(ctx, p)
	return err
}

func init() {
	rootCmd.AddCommand(startCmd)
}
