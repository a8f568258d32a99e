// Package provider is the static catalog of supported model providers.
//
// Every provider is a closed ID carrying its defaults as data: the
// endpoint, the default model list, the well-known recommended models,
// whether an API key is required, and how its model list is discovered.
package provider

import (
	"fmt"
	"slices"
	"strings"
)

// ID identifies a supported model provider.
type ID string

const (
	OpenAI   ID = "openai"
	Ollama   ID = "ollama"
	Gemini   ID = "gemini"
	DeepSeek ID = "deepseek"
	Claude   ID = "claude"
	Qwen     ID = "qwen"
)

// Discovery selects the model-listing protocol of a provider.
type Discovery int

const (
	// DiscoveryNone means the provider's model list is never queried.
	DiscoveryNone Discovery = iota
	// DiscoveryOpenAI lists models via GET {endpoint}/models with a bearer token.
	DiscoveryOpenAI
	// DiscoveryOllama lists models via GET {host}/api/tags.
	DiscoveryOllama
)

// Spec describes one provider.
type Spec struct {
	ID          ID
	DisplayName string
	Description string
	// KeyURL is where users obtain a credential.
	KeyURL string
	// NeedsAPIKey is true when the provider is unusable without a secret.
	NeedsAPIKey bool
	// EndpointOverridable lets the user replace DefaultEndpoint.
	EndpointOverridable bool
	DefaultEndpoint     string
	DefaultModels       []string
	// Recommended models are pre-selected when discovery finds them.
	Recommended []string
	Discovery   Discovery
}

var registry = []Spec{
	{
		ID:                  OpenAI,
		DisplayName:         "OpenAI",
		Description:         "OpenAI and any OpenAI-compatible API",
		KeyURL:              "https://platform.openai.com/api-keys",
		NeedsAPIKey:         true,
		EndpointOverridable: true,
		DefaultEndpoint:     "https://api.openai.com/v1",
		DefaultModels:       []string{"gpt-4o-mini", "gpt-4o"},
		Recommended:         []string{"gpt-4o-mini", "gpt-4o", "gpt-4", "gpt-3.5-turbo"},
		Discovery:           DiscoveryOpenAI,
	},
	{
		ID:                  Ollama,
		DisplayName:         "Ollama",
		Description:         "free local models",
		KeyURL:              "https://ollama.ai",
		EndpointOverridable: true,
		DefaultEndpoint:     "http://localhost:11434/v1",
		Discovery:           DiscoveryOllama,
	},
	{
		ID:              Gemini,
		DisplayName:     "Google Gemini",
		Description:     "Google's latest models",
		KeyURL:          "https://makersuite.google.com/app/apikey",
		NeedsAPIKey:     true,
		DefaultEndpoint: "https://generativelanguage.googleapis.com/v1beta",
		DefaultModels:   []string{"gemini-pro", "gemini-pro-vision"},
	},
	{
		ID:              DeepSeek,
		DisplayName:     "DeepSeek",
		Description:     "cost-effective code models",
		KeyURL:          "https://platform.deepseek.com/api_keys",
		NeedsAPIKey:     true,
		DefaultEndpoint: "https://api.deepseek.com",
		DefaultModels:   []string{"deepseek-chat", "deepseek-coder"},
	},
	{
		ID:              Claude,
		DisplayName:     "Claude",
		Description:     "Anthropic models",
		KeyURL:          "https://console.anthropic.com/",
		NeedsAPIKey:     true,
		DefaultEndpoint: "https://api.anthropic.com",
		DefaultModels:   []string{"claude-3-sonnet-20240229", "claude-3-haiku-20240307"},
	},
	{
		ID:              Qwen,
		DisplayName:     "Qwen",
		Description:     "Alibaba Tongyi Qianwen",
		KeyURL:          "https://dashscope.console.aliyun.com/",
		NeedsAPIKey:     true,
		DefaultEndpoint: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		DefaultModels:   []string{"qwen-plus", "qwen-turbo"},
	},
}

// All returns every provider in registry order.
func All() []Spec {
	return slices.Clone(registry)
}

// IDs returns every provider ID in registry order.
func IDs() []ID {
	ids := make([]ID, len(registry))
	for i, s := range registry {
		ids[i] = s.ID
	}
	return ids
}

// Lookup returns the spec for id.
func Lookup(id ID) (Spec, bool) {
	for _, s := range registry {
		if s.ID == id {
			return s, true
		}
	}
	return Spec{}, false
}

// MustLookup is Lookup for IDs known at compile time.
func MustLookup(id ID) Spec {
	s, ok := Lookup(id)
	if !ok {
		panic(fmt.Sprintf("unknown provider %q", id))
	}
	return s
}

// Parse converts a user-supplied name into an ID.
func Parse(name string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := Lookup(id); !ok {
		return "", fmt.Errorf("unknown provider %q (supported: %s)", name, joinIDs(IDs()))
	}
	return id, nil
}

// EnvPrefix is the upper-case prefix of the provider's env keys.
func (s Spec) EnvPrefix() string {
	return strings.ToUpper(string(s.ID))
}

// BaseURLKey is the env key holding the provider endpoint.
func (s Spec) BaseURLKey() string { return s.EnvPrefix() + "_BASE_URL" }

// APIKeyKey is the env key holding the provider secret.
func (s Spec) APIKeyKey() string { return s.EnvPrefix() + "_API_KEY" }

// ModelsKey is the env key holding the comma separated model list.
func (s Spec) ModelsKey() string { return s.EnvPrefix() + "_MODELS" }

// CredentialKey is the key whose non-empty value marks the provider as
// configured: the API key for credentialed providers, the base URL for
// local ones.
func (s Spec) CredentialKey() string {
	if s.NeedsAPIKey {
		return s.APIKeyKey()
	}
	return s.BaseURLKey()
}

// CredentialKeys returns the credential key of every provider.
func CredentialKeys() []string {
	keys := make([]string, len(registry))
	for i, s := range registry {
		keys[i] = s.CredentialKey()
	}
	return keys
}

// Remaining returns the providers not contained in configured, in
// registry order.
func Remaining(configured []ID) []Spec {
	var out []Spec
	for _, s := range registry {
		if !slices.Contains(configured, s.ID) {
			out = append(out, s)
		}
	}
	return out
}

func joinIDs(ids []ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
