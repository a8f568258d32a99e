package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/text"

	"pixelle/internal/config"
	"pixelle/internal/launcher"
	"pixelle/internal/portresolver"
	"pixelle/internal/probe"
	"pixelle/internal/prompt"
	"pixelle/internal/server"
	"pixelle/internal/status"
	"pixelle/internal/wizard"
	"pixelle/pkg/logging"
)

// ProjectURL is printed by Help.
const ProjectURL = "https://github.com/AIDC-AI/Pixelle-MCP"

// Application represents the main application structure that bootstraps
// and runs pixelle for one root directory.
type Application struct {
	config *Config
	root   string
	store  *config.Store
	out    io.Writer

	probe    *probe.Prober
	resolver launcher.Resolver
	spinner  bool

	// serve replaces the managed server in tests.
	serve launcher.ServeFunc
}

// NewApplication configures logging, resolves the root directory and
// loads the env file found there. A missing file is not an error.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stderr
	if cfg.Quiet {
		logOutput = io.Discard
	}
	logging.InitForCLI(appLogLevel, logOutput)

	root, err := cfg.ResolveRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	store := config.NewStore(root, config.WithProcessEnv(true))
	logging.Debug("Bootstrap", "Root %s, configuration %s", root, store.Status())

	return &Application{
		config:   cfg,
		root:     root,
		store:    store,
		out:      out,
		probe:    probe.New(),
		resolver: portresolver.New(),
		spinner:  prompt.IsInteractive(),
	}, nil
}

// Root returns the project root.
func (a *Application) Root() string {
	return a.root
}

// Store returns the shared configuration store.
func (a *Application) Store() *config.Store {
	return a.store
}

// RequireComplete returns a *ConfigNotReadyError unless the env file
// holds a runnable configuration.
func (a *Application) RequireComplete() error {
	if st := a.store.Status(); st != config.StatusComplete {
		return NewConfigNotReadyError(st, a.store.Env().Path())
	}
	return nil
}

// Start launches the managed server after resolving port conflicts with
// confirm. It blocks until ctx is cancelled.
func (a *Application) Start(ctx context.Context, confirm launcher.Confirmer) (launcher.Outcome, error) {
	a.printRoot()
	if err := a.RequireComplete(); err != nil {
		return launcher.OutcomeAborted, err
	}

	l := launcher.New(a.store, a.resolver, confirm, a.serveFunc(false), launcher.WithOutput(a.out))
	return l.Launch(ctx, a.store.Get().Config.Service)
}

// Serve runs the managed server without prompts and reports readiness
// to systemd.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.RequireComplete(); err != nil {
		return err
	}
	return a.serveFunc(true)(ctx, a.store.Get())
}

func (a *Application) serveFunc(notify bool) launcher.ServeFunc {
	if a.serve != nil {
		return a.serve
	}
	srv := server.New(a.store,
		server.WithVersion(a.config.Version),
		server.WithEngineChecker(a.probe),
		server.WithNotify(notify),
	)
	return srv.Serve
}

// ConfirmOverwrite asks before an existing env file is replaced. It
// returns true when there is nothing to overwrite.
func (a *Application) ConfirmOverwrite(p prompt.Prompter) bool {
	if !a.store.Env().Exists() {
		return true
	}
	a.printf("%s An existing configuration was found at %s\n", text.FgYellow.Sprint("⚠"), a.store.Env().Path())
	return p.Confirm("Replace it with a new configuration?", true).Or(false)
}

// Reconfigure runs the setup wizard and persists the result. A
// cancelled wizard returns an error matching wizard.ErrCancelled and
// leaves the env file untouched.
func (a *Application) Reconfigure(ctx context.Context, p prompt.Prompter) (config.UnifiedConfig, error) {
	a.printRoot()
	w := wizard.New(p, a.probe, config.NewPersister(a.store),
		wizard.WithOutput(a.out),
		wizard.WithSpinner(a.spinner),
	)
	cfg, err := w.Run(ctx)
	if err != nil {
		return config.UnifiedConfig{}, err
	}
	a.printf("File: %s\n", a.store.Env().Path())
	return cfg, nil
}

// Status probes every service once. It fails only when no env file
// exists.
func (a *Application) Status(ctx context.Context, withProviders bool) (status.Report, error) {
	if st := a.store.Status(); st == config.StatusFirstTime {
		return status.Report{}, NewConfigNotReadyError(st, a.store.Env().Path())
	}
	if err := a.store.Refresh(); err != nil {
		logging.Warn("Status", "Using the previous settings: %v", err)
	}
	prober := status.New(a.probe, status.WithProviders(withProviders))
	return prober.Probe(ctx, a.store.Get()), nil
}

// Manual prints where the env file lives and what to change in it.
func (a *Application) Manual() error {
	a.printRoot()
	path := a.store.Env().Path()

	a.printf("\n%s\n\n", text.Bold.Sprint("Manual configuration"))
	a.printf("The configuration lives in a plain KEY=VALUE file:\n  %s\n\n", path)
	a.printf("To start over, delete the file and run 'pixelle reconfig'.\n")
	a.printf("After editing, run 'pixelle status' to check the configuration.\n")

	if !a.store.Env().Exists() {
		a.printf("\n%s Configuration file does not exist\n", text.FgYellow.Sprint("⚠"))
		return NewConfigNotReadyError(config.StatusFirstTime, path)
	}

	a.printf("\nCommon changes:\n")
	a.printf("  - Change the port: edit %s=%d\n", config.KeyPort, a.store.Get().Config.Service.Port)
	a.printf("  - Add a model provider: set its API key, for example OPENAI_API_KEY\n")
	a.printf("  - Disable a provider: delete or clear its API key\n")
	a.printf("  - Change the workflow engine: edit %s\n", config.KeyEngineBaseURL)
	return nil
}

// Help prints the available commands.
func (a *Application) Help() {
	a.printf("%s\n\n", text.Bold.Sprint("Pixelle"))
	a.printf("Commands:\n")
	a.printf("  pixelle            interactive setup and menu\n")
	a.printf("  pixelle start      start the server\n")
	a.printf("  pixelle reconfig   run the setup wizard again\n")
	a.printf("  pixelle manual     show how to edit the configuration by hand\n")
	a.printf("  pixelle status     check the server, the web UI and the workflow engine\n")
	a.printf("\nProject: %s\n", ProjectURL)
}

func (a *Application) printRoot() {
	a.printf("%s %s\n", text.Bold.Sprint("Root path:"), a.root)
}

func (a *Application) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func absPath(p string) (string, error) {
	return filepath.Abs(p)
}
