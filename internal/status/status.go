// Package status aggregates reachability checks of the managed server,
// the workflow engine and, optionally, the configured providers.
package status

import (
	"context"
	"fmt"
	"time"

	"pixelle/internal/config"
	"pixelle/internal/probe"
	"pixelle/internal/provider"
	"pixelle/pkg/logging"
)

// Check names.
const (
	CheckMCPEndpoint = "local_mcp_endpoint"
	CheckWebUI       = "local_web_ui"
	CheckEngine      = "engine"
	providerPrefix   = "provider:"
)

// Check is the result of one probe.
type Check struct {
	Name      string `json:"name" yaml:"name"`
	URL       string `json:"url" yaml:"url"`
	Reachable bool   `json:"reachable" yaml:"reachable"`
	Detail    string `json:"detail" yaml:"detail"`
}

// Report is the outcome of one Probe run.
type Report struct {
	Checks       []Check  `json:"checks" yaml:"checks"`
	Providers    []string `json:"providers" yaml:"providers"`
	ModelCount   int      `json:"modelCount" yaml:"modelCount"`
	DefaultModel string   `json:"defaultModel" yaml:"defaultModel"`
}

// Reachable counts reachable checks.
func (r Report) Reachable() int {
	n := 0
	for _, c := range r.Checks {
		if c.Reachable {
			n++
		}
	}
	return n
}

// Total counts checks.
func (r Report) Total() int {
	return len(r.Checks)
}

// Healthy reports whether every check is reachable.
func (r Report) Healthy() bool {
	return r.Reachable() == r.Total()
}

// Get returns the check with name.
func (r Report) Get(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

// Checker is the connectivity surface the prober needs.
type Checker interface {
	Engine(ctx context.Context, endpoint string) error
	Reachable(ctx context.Context, target string, timeout time.Duration) error
	ListModels(ctx context.Context, spec provider.Spec, endpoint, apiKey string) ([]string, error)
}

// Prober runs the status checks.
type Prober struct {
	checker   Checker
	providers bool
}

// Option configures a Prober.
type Option func(*Prober)

// WithProviders adds a model-listing check per configured provider that
// supports discovery.
func WithProviders(enabled bool) Option {
	return func(p *Prober) {
		p.providers = enabled
	}
}

// New creates a Prober.
func New(checker Checker, opts ...Option) *Prober {
	p := &Prober{checker: checker}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe checks every subsystem once. Failures are recorded in the
// report, never returned.
func (p *Prober) Probe(ctx context.Context, s config.Settings) Report {
	base := localBaseURL(s.Config.Service)
	var report Report

	mcpURL := base + "/mcp"
	report.Checks = append(report.Checks, p.check(CheckMCPEndpoint, mcpURL, "MCP protocol endpoint",
		p.checker.Reachable(ctx, mcpURL, probe.StatusTimeout)))

	if s.WebUIEnabled {
		report.Checks = append(report.Checks, p.check(CheckWebUI, base, "Web interface",
			p.checker.Reachable(ctx, base, probe.StatusTimeout)))
	}

	engine := s.Config.Engine.Endpoint
	report.Checks = append(report.Checks, p.check(CheckEngine, engine, "Workflow engine",
		p.checker.Engine(ctx, engine)))

	for _, pc := range s.Config.Providers.All() {
		report.Providers = append(report.Providers, string(pc.ID))
		spec := pc.Spec()
		if !p.providers || spec.Discovery == provider.DiscoveryNone {
			continue
		}
		endpoint := pc.ResolvedEndpoint()
		models, err := p.checker.ListModels(ctx, spec, endpoint, pc.Credential)
		report.Checks = append(report.Checks, p.check(providerPrefix+string(pc.ID), endpoint,
			fmt.Sprintf("%d models available", len(models)), err))
	}

	report.ModelCount = len(s.Config.Providers.AllModels())
	report.DefaultModel = s.DefaultModel()

	logging.Debug("Status", "%d/%d checks reachable", report.Reachable(), report.Total())
	return report
}

func (p *Prober) check(name, url, okDetail string, err error) Check {
	if err != nil {
		return Check{Name: name, URL: url, Detail: probe.Describe(err)}
	}
	return Check{Name: name, URL: url, Reachable: true, Detail: okDetail}
}

// localBaseURL addresses the managed server from this machine; a
// wildcard bind address is reached through localhost.
func localBaseURL(svc config.ServiceConfig) string {
	if svc.IsPublic() {
		svc.Host = "localhost"
	}
	return svc.BaseURL()
}
