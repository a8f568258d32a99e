package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelle/internal/prompt"
)

var reconfigYes bool

// reconfigCmd reruns the setup wizard.
var reconfigCmd = &cobra.Command{
	Use:   "reconfig",
	Short: "Run the setup wizard again",
	Long: `Runs the setup wizard and replaces the saved configuration.

You are asked before an existing configuration is replaced; --yes skips
that question. Cancelling the wizard at any step keeps the old file.`,
	Args: cobra.NoArgs,
	RunE: runReconfig,
}

func runReconfig(cmd *cobra.Command, _ []string) error {
	if !prompt.IsInteractive() {
		return fmt.Errorf("the setup wizard needs a terminal; edit the file by hand instead (see 'pixelle manual')")
	}
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	p, release, err := newPrompter(cmd)
	if err != nil {
		return err
	}
	defer release()

	if !reconfigYes && !application.ConfirmOverwrite(p) {
		fmt.Fprintln(cmd.OutOrStdout(), "Keeping the existing configuration")
		return nil
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	_, err = application.Reconfigure(ctx, p)
	return err
}

func init() {
	rootCmd.AddCommand(reconfigCmd)
	reconfigCmd.Flags().BoolVarP(&reconfigYes, "yes", "y", false, "Replace an existing configuration without asking")
}
