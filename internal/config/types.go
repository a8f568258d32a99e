package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"

	"pixelle/internal/provider"
)

// ErrDuplicateProvider is returned when a provider is added twice.
var ErrDuplicateProvider = errors.New("provider already configured")

// EngineConfig is the workflow engine connection.
type EngineConfig struct {
	Endpoint     string `json:"endpoint" yaml:"endpoint"`
	APIKey       string `json:"-" yaml:"-"`
	Cookies      string `json:"-" yaml:"-"`
	ExecutorType string `json:"executorType,omitempty" yaml:"executorType,omitempty"`
}

// ProviderConfig is one configured model provider.
type ProviderConfig struct {
	ID         provider.ID `json:"id" yaml:"id"`
	Credential string      `json:"-" yaml:"-"`
	Endpoint   string      `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Models     []string    `json:"models" yaml:"models"`
}

// Spec returns the registry entry for the provider.
func (p ProviderConfig) Spec() provider.Spec {
	s, _ := provider.Lookup(p.ID)
	return s
}

// ResolvedEndpoint returns the override or the provider default.
func (p ProviderConfig) ResolvedEndpoint() string {
	if p.Endpoint != "" {
		return p.Endpoint
	}
	return p.Spec().DefaultEndpoint
}

// Validate checks the provider against its registry entry.
func (p ProviderConfig) Validate() error {
	spec, ok := provider.Lookup(p.ID)
	if !ok {
		return fmt.Errorf("unknown provider %q", p.ID)
	}
	if spec.NeedsAPIKey && p.Credential == "" {
		return fmt.Errorf("provider %s requires an API key", p.ID)
	}
	if _, err := provider.ParseModels(provider.JoinModels(p.Models)); err != nil {
		return fmt.Errorf("provider %s: %w", p.ID, err)
	}
	return nil
}

// ProviderSet is an ordered set of providers keyed by ID.
type ProviderSet struct {
	items []ProviderConfig
}

// NewProviderSet builds a set from providers, rejecting duplicates.
func NewProviderSet(providers ...ProviderConfig) (ProviderSet, error) {
	var s ProviderSet
	for _, p := range providers {
		if err := s.Add(p); err != nil {
			return ProviderSet{}, err
		}
	}
	return s, nil
}

// Add appends p unless a provider with the same ID is present.
func (s *ProviderSet) Add(p ProviderConfig) error {
	if s.Has(p.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.ID)
	}
	p.Models = slices.Clone(p.Models)
	s.items = append(s.items, p)
	return nil
}

// Has reports whether id is configured.
func (s ProviderSet) Has(id provider.ID) bool {
	_, ok := s.Get(id)
	return ok
}

// Get returns the provider with id.
func (s ProviderSet) Get(id provider.ID) (ProviderConfig, bool) {
	for _, p := range s.items {
		if p.ID == id {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

// All returns the providers in insertion order.
func (s ProviderSet) All() []ProviderConfig {
	return slices.Clone(s.items)
}

// IDs returns the configured IDs in insertion order.
func (s ProviderSet) IDs() []provider.ID {
	ids := make([]provider.ID, len(s.items))
	for i, p := range s.items {
		ids[i] = p.ID
	}
	return ids
}

func (s ProviderSet) Len() int {
	return len(s.items)
}

// AllModels returns every configured model, provider by provider.
func (s ProviderSet) AllModels() []string {
	var models []string
	for _, p := range s.items {
		models = append(models, p.Models...)
	}
	return models
}

// ServiceConfig is the managed server's network binding.
type ServiceConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// Validate checks the port range.
func (s ServiceConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port %d is out of range 1-65535", s.Port)
	}
	if s.Host == "" {
		return errors.New("host must not be empty")
	}
	return nil
}

// Address returns host:port for listening.
func (s ServiceConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// BaseURL returns the http URL of the service as seen from this host.
func (s ServiceConfig) BaseURL() string {
	return "http://" + s.Address()
}

// IsPublic reports whether the service listens on every interface.
func (s ServiceConfig) IsPublic() bool {
	return s.Host == PublicBindHost
}

// UnifiedConfig is the complete configuration produced by the setup wizard.
type UnifiedConfig struct {
	Engine    EngineConfig  `json:"engine" yaml:"engine"`
	Providers ProviderSet   `json:"-" yaml:"-"`
	Service   ServiceConfig `json:"service" yaml:"service"`
}

// DefaultModel is the first model of the first provider that has one.
// It is empty iff no provider has models.
func (c UnifiedConfig) DefaultModel() string {
	for _, p := range c.Providers.items {
		if len(p.Models) > 0 {
			return p.Models[0]
		}
	}
	return ""
}

// Validate checks everything required before the config is persisted.
func (c UnifiedConfig) Validate() error {
	if c.Engine.Endpoint == "" {
		return errors.New("engine endpoint is required")
	}
	if c.Providers.Len() == 0 {
		return errors.New("at least one provider is required")
	}
	for _, p := range c.Providers.items {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return c.Service.Validate()
}

// Status classifies the persisted configuration.
type Status string

const (
	StatusFirstTime  Status = "first_time"
	StatusIncomplete Status = "incomplete"
	StatusComplete   Status = "complete"
)
