package cmd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := rootCmd.Version
	rootCmd.Version = v
	t.Cleanup(func() { rootCmd.Version = original })
}

func TestVersionCommand(t *testing.T) {
	withVersion(t, "1.2.3-test")
	root := t.TempDir()

	out, err := execute(t, root, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pixelle version 1.2.3-test\n")
	assert.Contains(t, out, "go: "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH+"\n")
	assert.Contains(t, out, "root: "+root+"\n")
}

func TestVersionCommand_Short(t *testing.T) {
	withVersion(t, "1.2.3-test")
	t.Cleanup(func() { versionShort = false })

	out, err := execute(t, t.TempDir(), "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3-test\n", out)
}

func TestVersionCommand_EmptyVersionIsDev(t *testing.T) {
	withVersion(t, "")

	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pixelle version dev\n")
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, t.TempDir(), "version", "extra")
	assert.Error(t, err)
}
