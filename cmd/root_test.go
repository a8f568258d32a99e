package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelle/internal/app"
	"pixelle/internal/config"
	"pixelle/internal/prompt"
	"pixelle/internal/wizard"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	if GetVersion() != "1.2.3-test" {
		t.Errorf("Expected version to be 1.2.3-test, got %s", GetVersion())
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "pixelle" {
		t.Errorf("Expected Use to be 'pixelle', got %s", rootCmd.Use)
	}
	if rootCmd.Short == "" || rootCmd.Long == "" {
		t.Error("Expected descriptions to be set")
	}
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
	for _, flag := range []string{"root", "debug", "quiet"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Expected persistent flag --%s", flag)
		}
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{
		Use:     "test",
		Version: "1.0.0",
	}
	testCmd.SetVersionTemplate(`{{printf "pixelle version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())
	assert.Equal(t, "pixelle version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, expected := range []string{"start", "reconfig", "status", "manual", "serve", "version", "self-update"} {
		assert.True(t, found[expected], "subcommand %s", expected)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"cancelled", fmt.Errorf("setup: %w", wizard.ErrCancelled), ExitCodeSuccess},
		{"not ready", app.NewConfigNotReadyError(config.StatusIncomplete, "/x/.env"), ExitCodeError},
		{"other", errors.New("boom"), ExitCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, app.NewConfigNotReadyError(config.StatusFirstTime, "/x/.env"))
	assert.Contains(t, buf.String(), "no configuration found at /x/.env")
	assert.Contains(t, buf.String(), "pixelle reconfig")

	buf.Reset()
	printError(&buf, wizard.ErrCancelled)
	assert.Empty(t, buf.String())

	buf.Reset()
	printError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

// execute runs the root command with args against root and returns its
// output.
func execute(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), root, args...)
}

func executeContext(t *testing.T, ctx context.Context, root string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--root", root, "--quiet"))
	defer rootCmd.SetArgs(nil)
	// Subcommands keep the context of an earlier run otherwise.
	for _, c := range rootCmd.Commands() {
		c.SetContext(ctx)
	}
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootCommand_NeedsTerminal(t *testing.T) {
	require.NotNil(t, rootCmd.RunE)
	if prompt.IsInteractive() {
		t.Skip("running attached to a terminal")
	}
	_, err := execute(t, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a terminal")
}

func TestStartCommand_NotConfigured(t *testing.T) {
	root := t.TempDir()
	out, err := execute(t, root, "start")

	var notReady *app.ConfigNotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, config.StatusFirstTime, notReady.Status)
	assert.Equal(t, ExitCodeError, getExitCode(err))
	assert.Contains(t, out, root)
}

func TestServeCommand_NotConfigured(t *testing.T) {
	_, err := execute(t, t.TempDir(), "serve")
	var notReady *app.ConfigNotReadyError
	assert.ErrorAs(t, err, &notReady)
}

func TestManualCommand(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, root, "manual")
	var notReady *app.ConfigNotReadyError
	require.ErrorAs(t, err, &notReady)

	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("COMFYUI_BASE_URL=http://127.0.0.1:1\n"), 0o600))
	out, err := execute(t, root, "manual")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, ".env"))
}

func TestStatusCommand(t *testing.T) {
	root := t.TempDir()
	_, err := execute(t, root, "status", "-o", "table")
	var notReady *app.ConfigNotReadyError
	require.ErrorAs(t, err, &notReady)

	_, err = execute(t, root, "status", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")

	env := "PORT=1\nCOMFYUI_BASE_URL=http://127.0.0.1:1\nCHAINLIT_AUTH_ENABLED=false\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte(env), 0o600))
	out, err := execute(t, root, "status", "-o", "json")
	require.NoError(t, err)

	var report struct {
		Checks []struct {
			Name      string `json:"name"`
			Reachable bool   `json:"reachable"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	names := make([]string, 0, len(report.Checks))
	for _, c := range report.Checks {
		names = append(names, c.Name)
		assert.False(t, c.Reachable, c.Name)
	}
	assert.Equal(t, "local_mcp_endpoint,engine", strings.Join(names, ","))
}
