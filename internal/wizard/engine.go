package wizard

import (
	"context"
	"strings"

	"pixelle/internal/config"
	"pixelle/internal/probe"
	"pixelle/pkg/logging"
)

// EngineResult is the outcome of an engine check.
type EngineResult int

const (
	// EngineVerified means the engine answered the probe.
	EngineVerified EngineResult = iota
	// EngineUnverified means the probe failed and the address was
	// accepted anyway.
	EngineUnverified
	// EngineCancelled means the probe failed and the caller declined.
	EngineCancelled
)

func (r EngineResult) String() string {
	switch r {
	case EngineVerified:
		return "verified"
	case EngineUnverified:
		return "unverified"
	default:
		return "cancelled"
	}
}

// CheckEngine is the non-interactive form of the engine step. The
// returned error is the probe failure, if any, for display.
func CheckEngine(ctx context.Context, checker EngineChecker, endpoint string, acceptUnverified bool) (EngineResult, error) {
	err := checker.Engine(ctx, endpoint)
	switch {
	case err == nil:
		return EngineVerified, nil
	case acceptUnverified:
		return EngineUnverified, err
	default:
		return EngineCancelled, err
	}
}

// ConfigureEngine asks for the engine endpoint and probes it. After
// maxAttempts failed probes the last address is accepted unverified.
func (w *Wizard) ConfigureEngine(ctx context.Context) (config.EngineConfig, error) {
	w.printf("The workflow engine executes image and video workflows.\n")

	useDefault := w.prompter.Confirm("Use the default engine address "+config.DefaultEngineEndpoint+"?", true)
	if useDefault.IsCancelled() {
		return config.EngineConfig{}, ErrCancelled
	}

	endpoint := config.DefaultEngineEndpoint
	if !useDefault.Or(true) {
		a := w.prompter.Text("Engine address", config.DefaultEngineEndpoint)
		if a.IsCancelled() {
			return config.EngineConfig{}, ErrCancelled
		}
		endpoint = normalizeURL(a.Or(config.DefaultEngineEndpoint))
	}

	for attempt := 1; ; attempt++ {
		var probeErr error
		_ = w.withSpinner("Testing connection to "+endpoint+"...", func() error {
			probeErr = w.probe.Engine(ctx, endpoint)
			return nil
		})
		if err := interrupted(ctx); err != nil {
			return config.EngineConfig{}, err
		}
		if probeErr == nil {
			w.success("Connected to the workflow engine at %s", endpoint)
			return engineConfig(endpoint), nil
		}

		w.failure("Cannot reach the workflow engine at %s: %s", endpoint, probe.Describe(probeErr))
		logging.Debug("Wizard", "Engine probe attempt %d/%d failed: %v", attempt, w.maxAttempts, probeErr)

		if attempt >= w.maxAttempts {
			w.warn("Using %s without verification; make sure the engine is running before starting the server", endpoint)
			return engineConfig(endpoint), nil
		}

		accept := w.prompter.Confirm("Use this address anyway?", true)
		if accept.IsCancelled() {
			return config.EngineConfig{}, ErrCancelled
		}
		if accept.Or(true) {
			w.warn("Using %s without verification", endpoint)
			return engineConfig(endpoint), nil
		}

		next := w.prompter.Text("New engine address", endpoint)
		if next.IsCancelled() {
			return config.EngineConfig{}, ErrCancelled
		}
		endpoint = normalizeURL(next.Or(endpoint))
	}
}

func engineConfig(endpoint string) config.EngineConfig {
	return config.EngineConfig{Endpoint: endpoint, ExecutorType: config.DefaultExecutorType}
}

func normalizeURL(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "/")
}
