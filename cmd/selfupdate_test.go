package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct {
	repo     selfupdate.Repository
	detected int
	updated  int
	found    bool
	err      error
}

func (f *fakeUpdater) DetectLatest(_ context.Context, repo selfupdate.Repository) (*selfupdate.Release, bool, error) {
	f.detected++
	f.repo = repo
	return nil, f.found, f.err
}

func (f *fakeUpdater) UpdateTo(context.Context, *selfupdate.Release, string) error {
	f.updated++
	return nil
}

func withUpdater(t *testing.T, u releaseUpdater, err error) {
	t.Helper()
	original := newUpdater
	newUpdater = func() (releaseUpdater, error) { return u, err }
	t.Cleanup(func() { newUpdater = original })
}

func TestSelfUpdate_DevelopmentVersion(t *testing.T) {
	for _, v := range []string{"", "dev"} {
		t.Run("version="+v, func(t *testing.T) {
			withVersion(t, v)
			fake := &fakeUpdater{}
			withUpdater(t, fake, nil)

			_, err := execute(t, t.TempDir(), "self-update")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "cannot self-update a development version")
			assert.Zero(t, fake.detected)
		})
	}
}

func TestSelfUpdate_ReleaseNotFound(t *testing.T) {
	withVersion(t, "1.0.0")
	fake := &fakeUpdater{}
	withUpdater(t, fake, nil)

	out, err := execute(t, t.TempDir(), "self-update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latest release for AIDC-AI/Pixelle-MCP could not be found")
	assert.Contains(t, out, "Current version: 1.0.0\nChecking for updates...\n")
	assert.Equal(t, selfupdate.ParseSlug(githubRepoSlug), fake.repo)
	assert.Zero(t, fake.updated)
}

func TestSelfUpdate_DetectError(t *testing.T) {
	withVersion(t, "1.0.0")
	boom := errors.New("rate limited")
	withUpdater(t, &fakeUpdater{err: boom}, nil)

	_, err := execute(t, t.TempDir(), "self-update")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "error detecting latest version")
}

func TestSelfUpdate_UpdaterError(t *testing.T) {
	withVersion(t, "1.0.0")
	withUpdater(t, nil, errors.New("no token"))

	_, err := execute(t, t.TempDir(), "self-update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create updater: no token")
}

func TestSelfUpdate_CancelledContext(t *testing.T) {
	withVersion(t, "1.0.0")
	fake := &fakeUpdater{found: true}
	withUpdater(t, fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executeContext(t, ctx, t.TempDir(), "self-update")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fake.detected)
	assert.Zero(t, fake.updated)
}
