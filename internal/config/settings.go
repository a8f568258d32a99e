package config

import (
	"path/filepath"
	"strconv"
	"strings"

	"pixelle/internal/envstore"
	"pixelle/internal/provider"
	"pixelle/pkg/logging"
)

// Settings is the live view of the configuration read by the server and
// the status commands.
type Settings struct {
	// Root is the project directory that holds the env file.
	Root   string
	Config UnifiedConfig

	PublicReadURL string
	WebUIEnabled  bool
	AuthSecret    string
	// LocalStoragePath is relative to Root unless absolute.
	LocalStoragePath string
	MaxFileSize      int64

	// PersistedDefaultModel is CHAINLIT_CHAT_DEFAULT_MODEL as read from
	// the file, which may differ from Config.DefaultModel after a manual
	// edit.
	PersistedDefaultModel string
}

// DefaultSettings returns the settings used when no env file exists.
func DefaultSettings(root string) Settings {
	return Settings{
		Root: root,
		Config: UnifiedConfig{
			Engine:  EngineConfig{Endpoint: DefaultEngineEndpoint, ExecutorType: DefaultExecutorType},
			Service: DefaultServiceConfig(),
		},
		WebUIEnabled:     true,
		AuthSecret:       DefaultAuthSecret,
		LocalStoragePath: DefaultStoragePath,
		MaxFileSize:      DefaultMaxFileSize,
	}
}

// ReadURL is the base URL used to build links to stored files.
func (s Settings) ReadURL() string {
	if s.PublicReadURL != "" {
		return strings.TrimRight(s.PublicReadURL, "/")
	}
	return s.Config.Service.BaseURL()
}

// DefaultModel returns the persisted default model, or the derived one.
func (s Settings) DefaultModel() string {
	if s.PersistedDefaultModel != "" {
		return s.PersistedDefaultModel
	}
	return s.Config.DefaultModel()
}

// StorageDir is the absolute directory for uploaded files.
func (s Settings) StorageDir() string {
	return s.resolve(s.LocalStoragePath)
}

// WorkflowDir is the absolute directory for custom workflows.
func (s Settings) WorkflowDir() string {
	return s.resolve(WorkflowDir)
}

// EnvPath is the path of the env file.
func (s Settings) EnvPath() string {
	return filepath.Join(s.Root, envstore.FileName)
}

func (s Settings) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Root, p)
}

// settingsFrom builds Settings from a key lookup. Missing or malformed
// values fall back to defaults.
func settingsFrom(root string, get func(string) string) Settings {
	s := DefaultSettings(root)

	if v := get(KeyEngineBaseURL); v != "" {
		s.Config.Engine.Endpoint = v
	}
	s.Config.Engine.APIKey = get(KeyEngineAPIKey)
	s.Config.Engine.Cookies = get(KeyEngineCookies)
	if v := get(KeyEngineExecutorType); v != "" {
		s.Config.Engine.ExecutorType = v
	}

	if v := get(KeyHost); v != "" {
		s.Config.Service.Host = v
	}
	if v := get(KeyPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			logging.Warn("Config", "Invalid %s=%q, using %d", KeyPort, v, DefaultPort)
		} else {
			s.Config.Service.Port = port
		}
	}

	for _, spec := range provider.All() {
		if get(spec.CredentialKey()) == "" {
			continue
		}
		p := ProviderConfig{
			ID:       spec.ID,
			Endpoint: get(spec.BaseURLKey()),
			Models:   provider.SplitModels(get(spec.ModelsKey())),
		}
		if spec.NeedsAPIKey {
			p.Credential = get(spec.APIKeyKey())
		}
		if len(p.Models) == 0 {
			p.Models = spec.DefaultModels
		}
		_ = s.Config.Providers.Add(p)
	}

	s.PublicReadURL = get(KeyPublicReadURL)
	if v := get(KeyWebUIEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logging.Warn("Config", "Invalid %s=%q, keeping the web UI enabled", KeyWebUIEnabled, v)
		} else {
			s.WebUIEnabled = enabled
		}
	}
	if v := get(KeyAuthSecret); v != "" {
		s.AuthSecret = v
	}
	if v := get(KeyLocalStoragePath); v != "" {
		s.LocalStoragePath = v
	}
	if v := get(KeyMaxFileSize); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil && size > 0 {
			s.MaxFileSize = size
		}
	}
	s.PersistedDefaultModel = get(KeyDefaultModel)
	return s
}
