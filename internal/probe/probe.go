// Package probe performs stateless HTTP reachability and model-listing
// checks against the workflow engine and model providers.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"pixelle/internal/provider"
	"pixelle/pkg/logging"
)

const (
	// EngineTimeout bounds the engine system-stats check.
	EngineTimeout = 3 * time.Second
	// StatusTimeout bounds a local endpoint check.
	StatusTimeout = 5 * time.Second
	// ModelListTimeout bounds an OpenAI-style model listing.
	ModelListTimeout = 10 * time.Second
	// OllamaTimeout bounds an Ollama tag listing.
	OllamaTimeout = 5 * time.Second
)

// Prober runs connectivity checks. The zero value is not usable; call New.
type Prober struct {
	client *http.Client
}

// Option configures a Prober.
type Option func(*Prober)

// WithHTTPClient replaces the HTTP client. Per-call timeouts are applied
// through the request context, so the client's own Timeout may be zero.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Prober) {
		p.client = c
	}
}

// New creates a Prober.
func New(opts ...Option) *Prober {
	p := &Prober{client: &http.Client{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EngineStatsURL resolves "/system_stats" against the engine endpoint.
// An absolute path replaces any path on the endpoint.
func EngineStatsURL(endpoint string) string {
	base, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return strings.TrimRight(endpoint, "/") + "/system_stats"
	}
	return base.ResolveReference(&url.URL{Path: "/system_stats"}).String()
}

// Engine checks that the workflow engine answers its system-stats
// endpoint with HTTP 200.
func (p *Prober) Engine(ctx context.Context, endpoint string) error {
	target := EngineStatsURL(endpoint)
	status, err := p.get(ctx, target, EngineTimeout, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &StatusError{Endpoint: target, StatusCode: status}
	}
	return nil
}

// Reachable performs one GET against target. Any response below 500
// counts as reachable: the local MCP endpoint answers a bare GET with a
// client error while still being up.
func (p *Prober) Reachable(ctx context.Context, target string, timeout time.Duration) error {
	status, err := p.get(ctx, target, timeout, nil, nil)
	if err != nil {
		return err
	}
	if status >= http.StatusInternalServerError {
		return &StatusError{Endpoint: target, StatusCode: status}
	}
	return nil
}

// ListModels discovers the models offered by a provider. Providers
// without a discovery protocol return an empty list and no error.
func (p *Prober) ListModels(ctx context.Context, spec provider.Spec, endpoint, apiKey string) ([]string, error) {
	if endpoint == "" {
		endpoint = spec.DefaultEndpoint
	}
	switch spec.Discovery {
	case provider.DiscoveryOpenAI:
		return p.listOpenAIModels(ctx, endpoint, apiKey)
	case provider.DiscoveryOllama:
		return p.listOllamaModels(ctx, endpoint)
	default:
		return nil, nil
	}
}

// Ollama checks that an Ollama server answers its tag listing.
func (p *Prober) Ollama(ctx context.Context, endpoint string) error {
	target := ollamaTagsURL(endpoint)
	status, err := p.get(ctx, target, OllamaTimeout, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &StatusError{Endpoint: target, StatusCode: status}
	}
	return nil
}

type openAIModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// chatModelKeywords filters embeddings, audio and moderation models out
// of an OpenAI listing.
var chatModelKeywords = []string{"gpt", "chat", "davinci", "text"}

func (p *Prober) listOpenAIModels(ctx context.Context, endpoint, apiKey string) ([]string, error) {
	target := strings.TrimRight(endpoint, "/") + "/models"
	headers := map[string]string{}
	if apiKey != "" {
		headers["Authorization"] = "Bearer " + apiKey
	}

	var list openAIModelList
	status, err := p.get(ctx, target, ModelListTimeout, headers, &list)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{Endpoint: target, StatusCode: status}
	}

	var models []string
	for _, m := range list.Data {
		lower := strings.ToLower(m.ID)
		for _, kw := range chatModelKeywords {
			if strings.Contains(lower, kw) {
				models = append(models, m.ID)
				break
			}
		}
	}
	sort.Strings(models)
	logging.Debug("Probe", "Found %d chat models at %s", len(models), target)
	return models, nil
}

type ollamaTagList struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func ollamaTagsURL(endpoint string) string {
	return strings.TrimRight(strings.Replace(endpoint, "/v1", "", 1), "/") + "/api/tags"
}

func (p *Prober) listOllamaModels(ctx context.Context, endpoint string) ([]string, error) {
	target := ollamaTagsURL(endpoint)
	var list ollamaTagList
	status, err := p.get(ctx, target, OllamaTimeout, nil, &list)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &StatusError{Endpoint: target, StatusCode: status}
	}
	models := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, m.Name)
	}
	return models, nil
}

// get performs a GET bounded by timeout and, on HTTP 200 with a non-nil
// out, decodes the JSON body into it.
func (p *Prober) get(ctx context.Context, target string, timeout time.Duration, headers map[string]string, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid URL %q: %w", target, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		connErr := ClassifyConnectionError(err, target)
		logging.Debug("Probe", "GET %s failed: %s", target, connErr.Type)
		return 0, connErr
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("invalid response from %s: %w", target, err)
		}
		return resp.StatusCode, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
