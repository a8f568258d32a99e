package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelle/internal/envstore"
	"pixelle/internal/provider"
)

func writeEnv(t *testing.T, root, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, envstore.FileName), []byte(content), 0o600))
}

func TestStore_Defaults(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root).Get()

	assert.Equal(t, DefaultHost, s.Config.Service.Host)
	assert.Equal(t, DefaultPort, s.Config.Service.Port)
	assert.Equal(t, DefaultEngineEndpoint, s.Config.Engine.Endpoint)
	assert.True(t, s.WebUIEnabled)
	assert.Equal(t, DefaultMaxFileSize, s.MaxFileSize)
	assert.Equal(t, filepath.Join(root, "files"), s.StorageDir())
	assert.Equal(t, filepath.Join(root, "data", "custom_workflows"), s.WorkflowDir())
	assert.Equal(t, "http://localhost:9004", s.ReadURL())
}

func TestStore_RefreshReadsFile(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	writeEnv(t, root, `HOST=0.0.0.0
PORT=8123
PUBLIC_READ_URL="https://files.example.com/"
COMFYUI_BASE_URL=http://gpu:8188
CHAINLIT_AUTH_ENABLED=false
DEEPSEEK_API_KEY="dk"
OPENAI_MODELS="gpt-4o"
`)
	require.NoError(t, store.Refresh())

	s := store.Get()
	assert.Equal(t, "0.0.0.0", s.Config.Service.Host)
	assert.Equal(t, 8123, s.Config.Service.Port)
	assert.Equal(t, "http://gpu:8188", s.Config.Engine.Endpoint)
	assert.False(t, s.WebUIEnabled)
	assert.Equal(t, "https://files.example.com", s.ReadURL())

	// OpenAI has models but no key, so only DeepSeek is configured and
	// falls back to its default models.
	assert.Equal(t, []provider.ID{provider.DeepSeek}, s.Config.Providers.IDs())
	p, _ := s.Config.Providers.Get(provider.DeepSeek)
	assert.Equal(t, []string{"deepseek-chat", "deepseek-coder"}, p.Models)
	assert.Equal(t, "deepseek-chat", s.DefaultModel())
}

func TestStore_InvalidPortFallsBack(t *testing.T) {
	root := t.TempDir()
	writeEnv(t, root, "PORT=abc\n")
	assert.Equal(t, DefaultPort, NewStore(root).Get().Config.Service.Port)

	writeEnv(t, root, "PORT=70000\n")
	assert.Equal(t, DefaultPort, NewStore(root).Get().Config.Service.Port)
}

func TestStore_ReloadNotifiesSubscribers(t *testing.T) {
	store := NewStore(t.TempDir())

	var calls atomic.Int32
	var lastPort atomic.Int32
	store.Subscribe(func(s Settings) {
		calls.Add(1)
		lastPort.Store(int32(s.Config.Service.Port))
	})

	cfg := store.Get().Config
	cfg.Service.Port = 9100
	store.Reload(cfg)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(9100), lastPort.Load())
	assert.Equal(t, 9100, store.Get().Config.Service.Port)
	assert.False(t, store.Env().Exists(), "Reload must not touch disk")
}

func TestStore_ProcessEnv(t *testing.T) {
	root := t.TempDir()
	writeEnv(t, root, "PORT=9011\n")
	t.Setenv("PORT", "1")
	t.Setenv("COMFYUI_BASE_URL", "http://from-env:8188")

	store := NewStore(root, WithProcessEnv(true))
	s := store.Get()

	assert.Equal(t, 9011, s.Config.Service.Port, "file values win")
	assert.Equal(t, "9011", os.Getenv("PORT"), "file values are exported")
	assert.Equal(t, "http://from-env:8188", s.Config.Engine.Endpoint)
}

func TestStore_ProcessEnvDisabledIgnoresEnvironment(t *testing.T) {
	t.Setenv("COMFYUI_BASE_URL", "http://from-env:8188")
	s := NewStore(t.TempDir()).Get()
	assert.Equal(t, DefaultEngineEndpoint, s.Config.Engine.Endpoint)
}

func TestStore_ProcessEnvUnsetsRemovedKeys(t *testing.T) {
	root := t.TempDir()
	t.Setenv("COMFYUI_BASE_URL", "")
	writeEnv(t, root, "COMFYUI_BASE_URL=http://exported:8188\n")

	store := NewStore(root, WithProcessEnv(true))
	require.Equal(t, "http://exported:8188", store.Get().Config.Engine.Endpoint)

	writeEnv(t, root, "PORT=9011\n")
	require.NoError(t, store.Refresh())

	_, set := os.LookupEnv("COMFYUI_BASE_URL")
	assert.False(t, set)
	assert.Equal(t, DefaultEngineEndpoint, store.Get().Config.Engine.Endpoint)
}
