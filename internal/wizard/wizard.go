// Package wizard implements the interactive setup flow.
//
// The flow is a fixed sequence of steps (engine, providers, service,
// persist). Each step either produces a value, falls back to a default or
// returns ErrCancelled. Nothing is written unless every step completes.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"pixelle/internal/config"
	"pixelle/internal/prompt"
	"pixelle/internal/provider"
	"pixelle/pkg/logging"
)

// DefaultMaxAttempts bounds every retry loop in the wizard.
const DefaultMaxAttempts = 3

// ErrCancelled is returned when the user aborts the wizard.
var ErrCancelled = errors.New("setup cancelled")

// EngineChecker verifies a workflow engine endpoint.
type EngineChecker interface {
	Engine(ctx context.Context, endpoint string) error
}

// Prober is the connectivity surface the wizard needs.
type Prober interface {
	EngineChecker
	Ollama(ctx context.Context, endpoint string) error
	ListModels(ctx context.Context, spec provider.Spec, endpoint, apiKey string) ([]string, error)
}

// Persister saves the finished configuration.
type Persister interface {
	Persist(cfg config.UnifiedConfig) error
}

// Wizard collects a UnifiedConfig from the user.
type Wizard struct {
	prompter    prompt.Prompter
	probe       Prober
	persister   Persister
	out         io.Writer
	maxAttempts int
	spinner     bool
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(w *Wizard) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// WithOutput sets where messages are printed. Defaults to stdout.
func WithOutput(out io.Writer) Option {
	return func(w *Wizard) {
		w.out = out
	}
}

// WithSpinner shows a progress spinner during network checks.
func WithSpinner(enabled bool) Option {
	return func(w *Wizard) {
		w.spinner = enabled
	}
}

// New creates a Wizard.
func New(p prompt.Prompter, probe Prober, persister Persister, opts ...Option) *Wizard {
	w := &Wizard{
		prompter:    p,
		probe:       probe,
		persister:   persister,
		out:         os.Stdout,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes every step and persists the result. On ErrCancelled or
// any step error the env file is left untouched.
func (w *Wizard) Run(ctx context.Context) (config.UnifiedConfig, error) {
	var cfg config.UnifiedConfig
	start := time.Now()

	w.header(1, "Workflow engine")
	engine, err := w.ConfigureEngine(ctx)
	if err != nil {
		return cfg, w.finish(err)
	}

	w.header(2, "Model providers")
	providers, err := w.ConfigureProviders(ctx)
	if err != nil {
		return cfg, w.finish(err)
	}

	w.header(3, "Service")
	service, err := w.ConfigureService()
	if err != nil {
		return cfg, w.finish(err)
	}

	cfg = config.UnifiedConfig{Engine: engine, Providers: providers, Service: service}

	w.header(4, "Save")
	if err := interrupted(ctx); err != nil {
		return cfg, w.finish(err)
	}
	if err := w.persister.Persist(cfg); err != nil {
		return cfg, err
	}
	w.printf("%s Configuration saved\n", text.FgGreen.Sprint("✓"))
	logging.Info("Wizard", "Setup completed in %s", logging.Since(start))
	return cfg, nil
}

// interrupted turns a done context into ErrCancelled. A probe that failed
// because of Ctrl+C must not read as an unreachable endpoint.
func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

func (w *Wizard) finish(err error) error {
	if errors.Is(err, ErrCancelled) {
		w.printf("%s Setup cancelled, no changes were saved\n", text.FgYellow.Sprint("⚠"))
		logging.Info("Wizard", "Setup cancelled by user")
	}
	return err
}

func (w *Wizard) header(step int, title string) {
	w.printf("\n%s\n", text.Bold.Sprintf("Step %d/4: %s", step, title))
}

func (w *Wizard) printf(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}

func (w *Wizard) success(format string, args ...any) {
	w.printf("%s %s\n", text.FgGreen.Sprint("✓"), fmt.Sprintf(format, args...))
}

func (w *Wizard) warn(format string, args ...any) {
	w.printf("%s %s\n", text.FgYellow.Sprint("⚠"), fmt.Sprintf(format, args...))
}

func (w *Wizard) failure(format string, args ...any) {
	w.printf("%s %s\n", text.FgRed.Sprint("✗"), fmt.Sprintf(format, args...))
}

// withSpinner runs fn while a spinner shows message.
func (w *Wizard) withSpinner(message string, fn func() error) error {
	if !w.spinner {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w.out))
	s.Suffix = " " + message
	s.Start()
	defer s.Stop()
	return fn()
}
