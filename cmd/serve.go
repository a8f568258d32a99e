package cmd

import (
	"github.com/spf13/cobra"
)

// serveCmd runs the managed server without any prompts.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Pixelle server without prompts",
	Long: `Runs the Pixelle server in the foreground without checking for port
conflicts or asking questions. Meant for process supervisors such as
systemd: readiness is reported through sd_notify once the listener is
bound, and SIGTERM shuts the server down gracefully.

The configuration must be complete.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()
	return application.Serve(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
