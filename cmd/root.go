package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pixelle/internal/app"
	"pixelle/internal/prompt"
	"pixelle/internal/wizard"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution, including a setup
	// the user cancelled.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a failed command or a configuration that is
	// not ready.
	ExitCodeError = 1
)

// Global flags shared by every command.
var (
	rootPath  string
	rootDebug bool
	rootQuiet bool
)

// rootCmd represents the base command for the pixelle application.
// Without a subcommand it runs the interactive setup and menu.
var rootCmd = &cobra.Command{
	Use:   "pixelle",
	Short: "Configure and run the Pixelle MCP server",
	Long: `pixelle turns workflow-engine workflows into MCP tools.

Run it without arguments for a guided setup: it checks for an existing
configuration, walks you through the workflow engine, model providers and
network settings, and starts the server. The subcommands run each step
on its own for scripting.`,
	Args: cobra.NoArgs,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	// Errors are printed by Execute so that detailed messages can be shown.
	SilenceErrors: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "pixelle version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	os.Exit(getExitCode(err))
}

// getExitCode determines the exit code for the error returned by a command.
func getExitCode(err error) int {
	if err == nil || wizard.IsCancelled(err) {
		return ExitCodeSuccess
	}
	return ExitCodeError
}

type detailedError interface {
	DetailedError() string
}

func printError(w io.Writer, err error) {
	if wizard.IsCancelled(err) {
		return
	}
	var detailed detailedError
	if errors.As(err, &detailed) {
		fmt.Fprintf(w, "Error: %s\n", detailed.DetailedError())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// newApplication bootstraps the application from the global flags.
func newApplication(cmd *cobra.Command) (*app.Application, error) {
	cfg := app.NewConfig(rootPath, rootDebug, rootQuiet)
	cfg.Version = cmd.Root().Version
	cfg.Out = cmd.OutOrStdout()

	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

// newPrompter returns a terminal prompter, or one that answers with the
// defaults when stdin is not a terminal. The returned func releases it.
func newPrompter(cmd *cobra.Command) (prompt.Prompter, func(), error) {
	if !prompt.IsInteractive() {
		return prompt.Defaults{}, func() {}, nil
	}
	term, err := prompt.NewTerminal(os.Stdin, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return term, func() { _ = term.Close() }, nil
}

// commandContext returns a context cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return app.WithInterrupt(ctx)
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	if !prompt.IsInteractive() {
		return fmt.Errorf("interactive setup needs a terminal; use 'pixelle start', 'pixelle reconfig' or 'pixelle status'")
	}
	p, release, err := newPrompter(cmd)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := commandContext(cmd)
	defer cancel()
	return application.RunInteractive(ctx, p)
}

func init() {
	// Set in init so command functions may refer to rootCmd.
	rootCmd.RunE = runInteractive

	rootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "Project directory holding the .env file (default $"+app.RootEnvVar+" or the working directory)")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&rootQuiet, "quiet", "q", false, "Suppress log output")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
