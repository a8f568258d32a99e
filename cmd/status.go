package cmd

import (
	"github.com/spf13/cobra"

	"pixelle/internal/status"
)

var (
	statusOutputFormat string
	statusProviders    bool
)

// statusCmd checks the running services.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the server, the web UI and the workflow engine",
	Long: `Probes the local MCP endpoint, the web UI (when enabled) and the workflow
engine once and prints the result. With --providers the model listing of
every configured provider that supports discovery is checked as well.

The command fails only when no configuration exists; unreachable services
are reported, not treated as errors.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := status.ParseOutputFormat(statusOutputFormat)
	if err != nil {
		return err
	}
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	report, err := application.Status(ctx, statusProviders)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), format)
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&statusOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	statusCmd.Flags().BoolVar(&statusProviders, "providers", false, "Also check the model listing of each provider")
}
