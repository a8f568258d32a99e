package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_StartStop(t *testing.T) {
	w := NewWatcher(NewStore(t.TempDir()))

	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	// Starting again should be a no-op
	require.NoError(t, w.Start())

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())

	// Stopping again should be a no-op
	require.NoError(t, w.Stop())
}

func TestWatcher_RefreshesStoreOnChange(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	w := NewWatcher(store, WithDebounce(20*time.Millisecond), WithPollInterval(50*time.Millisecond))
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, store.Env().Write([]byte("PORT=9123\n")))

	assert.Eventually(t, func() bool {
		return store.Get().Config.Service.Port == 9123
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_PollingDetectsChange(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)
	require.NoError(t, store.Env().Write([]byte("PORT=9001\n")))

	w := NewWatcher(store)
	assert.False(t, w.checkForChanges(), "first observation only records the mtime")

	later := time.Now().Add(2 * time.Second)
	require.NoError(t, store.Env().Write([]byte("PORT=9002\n")))
	require.NoError(t, os.Chtimes(store.Env().Path(), later, later))
	assert.True(t, w.checkForChanges())
	assert.False(t, w.checkForChanges())
}
