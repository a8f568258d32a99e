package cmd

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository (owner/repo) whose releases are installed.
const githubRepoSlug = "AIDC-AI/Pixelle-MCP"

// releaseUpdater is the part of selfupdate.Updater used here.
type releaseUpdater interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

// newUpdater is replaced in tests.
var newUpdater = func() (releaseUpdater, error) {
	u, err := selfupdate.NewUpdater(selfupdate.Config{})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// newSelfUpdateCmd creates the Cobra command that replaces the running
// binary with the latest GitHub release.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update pixelle to the latest version",
		Long: `Checks for the latest release of pixelle on GitHub and
updates the current binary if a newer version is found.

Development builds cannot be updated. Ctrl+C aborts the check or the
download; the binary is only replaced once the download completed.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, _ []string) error {
	currentVersion := cmd.Root().Version
	if currentVersion == "" || currentVersion == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}
	out := cmd.OutOrStdout()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	fmt.Fprintf(out, "Current version: %s\n", currentVersion)
	fmt.Fprintln(out, "Checking for updates...")

	updater, err := newUpdater()
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update aborted: %w", err)
	}

	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("error detecting latest version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest release for %s could not be found", githubRepoSlug)
	}

	if !latest.GreaterThan(currentVersion) {
		fmt.Fprintln(out, "Current version is the latest.")
		return nil
	}

	fmt.Fprintf(out, "Found newer version: %s (published at %s)\n", latest.Version(), latest.PublishedAt)
	fmt.Fprintf(out, "Release notes:\n%s\n", latest.ReleaseNotes)

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	fmt.Fprintf(out, "Updating %s to version %s...\n", exe, latest.Version())

	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
