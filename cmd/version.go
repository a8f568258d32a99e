package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"pixelle/internal/app"
)

var versionShort bool

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of pixelle",
		Long: `Prints the pixelle version together with the Go runtime and the
project directory whose .env file the other commands read.`,
		Args: cobra.NoArgs,
		RunE: runVersion,
	}
	c.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	return c
}

func runVersion(cmd *cobra.Command, _ []string) error {
	version := cmd.Root().Version
	if version == "" {
		version = "dev"
	}
	out := cmd.OutOrStdout()
	if versionShort {
		fmt.Fprintln(out, version)
		return nil
	}

	fmt.Fprintf(out, "pixelle version %s\n", version)
	fmt.Fprintf(out, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	root, err := app.NewConfig(rootPath, rootDebug, rootQuiet).ResolveRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}
	fmt.Fprintf(out, "root: %s\n", root)
	return nil
}
