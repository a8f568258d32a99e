package config

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"pixelle/internal/provider"
	"pixelle/pkg/logging"
)

const envTemplate = `# Pixelle configuration
# Generated by the setup wizard. Re-run 'pixelle reconfig' to regenerate,
# or edit the values below and restart the server.

# Service
HOST={{ .Service.Host }}
PORT={{ .Service.Port }}
# Public base URL for stored files; empty means http://HOST:PORT
PUBLIC_READ_URL=""

# Workflow engine
COMFYUI_BASE_URL={{ .Engine.Endpoint }}
COMFYUI_API_KEY={{ .Engine.APIKey | quote }}
COMFYUI_COOKIES={{ .Engine.Cookies | quote }}
COMFYUI_EXECUTOR_TYPE={{ .Engine.ExecutorType | default "http" }}

# Web UI
CHAINLIT_AUTH_SECRET={{ .AuthSecret | quote }}
CHAINLIT_AUTH_ENABLED=true
CHAINLIT_SAVE_STARTER_ENABLED=false

# Model providers
{{- range .Providers }}

# {{ .Spec.DisplayName }}
{{ .Spec.BaseURLKey }}={{ .ResolvedEndpoint | quote }}
{{- if .Spec.NeedsAPIKey }}
{{ .Spec.APIKeyKey }}={{ .Credential | quote }}
{{- end }}
{{ .Spec.ModelsKey }}={{ join "," .Models | quote }}
{{- end }}

CHAINLIT_CHAT_DEFAULT_MODEL={{ .DefaultModel | quote }}
`

var envFileTemplate = template.Must(template.New("env").Funcs(sprig.TxtFuncMap()).Parse(envTemplate))

type envTemplateData struct {
	Engine       EngineConfig
	Service      ServiceConfig
	Providers    []ProviderConfig
	AuthSecret   string
	DefaultModel string
}

// Persister turns a UnifiedConfig into the env file and refreshes the
// live Store.
type Persister struct {
	store *Store
}

// NewPersister creates a Persister writing through store.
func NewPersister(store *Store) *Persister {
	return &Persister{store: store}
}

// Render returns the complete env file for cfg.
func Render(cfg UnifiedConfig) ([]byte, error) {
	data := envTemplateData{
		Engine:       cfg.Engine,
		Service:      cfg.Service,
		Providers:    cfg.Providers.All(),
		AuthSecret:   DefaultAuthSecret,
		DefaultModel: cfg.DefaultModel(),
	}
	var buf bytes.Buffer
	if err := envFileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// Persist overwrites the env file with cfg and then refreshes the Store.
// The write is complete and durable before the refresh starts.
func (p *Persister) Persist(cfg UnifiedConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid configuration: %w", err)
	}

	content, err := Render(cfg)
	if err != nil {
		return err
	}

	path := p.store.Env().Path()
	if err := p.store.Env().Write(content); err != nil {
		logging.Error("Persister", err, "Failed to write %s", path)
		return NewPersistError(path, err)
	}
	logging.Info("Persister", "Saved configuration with %d providers (%s) to %s",
		cfg.Providers.Len(), joinProviderIDs(cfg.Providers.IDs()), path)

	if err := p.store.Refresh(); err != nil {
		return fmt.Errorf("configuration saved to %s but could not be reloaded: %w", path, err)
	}
	return nil
}

func joinProviderIDs(ids []provider.ID) string {
	var buf bytes.Buffer
	for i, id := range ids {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(string(id))
	}
	return buf.String()
}
