// Package launcher starts the managed server after resolving port
// conflicts.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"pixelle/internal/config"
	"pixelle/internal/portresolver"
	"pixelle/internal/prompt"
	"pixelle/pkg/logging"
)

// ReleaseDelay is the fixed wait after terminating a port owner before
// binding. The socket is not re-polled.
const ReleaseDelay = time.Second

// Outcome is how a launch ended without error.
type Outcome int

const (
	// OutcomeStopped means the server ran and exited cleanly, usually on
	// interrupt.
	OutcomeStopped Outcome = iota
	// OutcomeAborted means the user declined to resolve a port conflict.
	OutcomeAborted
)

func (o Outcome) String() string {
	if o == OutcomeAborted {
		return "aborted"
	}
	return "stopped"
}

// Resolver is the port conflict surface the launcher needs.
type Resolver interface {
	IsPortInUse(ctx context.Context, port int) bool
	FindOwner(ctx context.Context, port int) (*portresolver.Owner, error)
	Terminate(ctx context.Context, owner *portresolver.Owner) bool
}

// Confirmer asks yes/no questions.
type Confirmer interface {
	Confirm(message string, def bool) prompt.Answer[bool]
}

// ServeFunc runs the server until ctx is cancelled.
type ServeFunc func(ctx context.Context, settings config.Settings) error

// Launcher coordinates a server start.
type Launcher struct {
	store        *config.Store
	resolver     Resolver
	confirm      Confirmer
	serve        ServeFunc
	out          io.Writer
	releaseDelay time.Duration
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithOutput sets where messages are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(l *Launcher) {
		l.out = w
	}
}

// WithReleaseDelay overrides ReleaseDelay.
func WithReleaseDelay(d time.Duration) Option {
	return func(l *Launcher) {
		l.releaseDelay = d
	}
}

// New creates a Launcher.
func New(store *config.Store, resolver Resolver, confirm Confirmer, serve ServeFunc, opts ...Option) *Launcher {
	l := &Launcher{
		store:        store,
		resolver:     resolver,
		confirm:      confirm,
		serve:        serve,
		out:          os.Stdout,
		releaseDelay: ReleaseDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Launch refreshes the settings, frees svc's port if the user agrees,
// reports the endpoints and blocks in the server. Declining any
// confirmation returns OutcomeAborted with a nil error; cancelling ctx
// while serving returns OutcomeStopped with a nil error.
func (l *Launcher) Launch(ctx context.Context, svc config.ServiceConfig) (Outcome, error) {
	if err := l.store.Refresh(); err != nil {
		logging.Warn("Launcher", "Using the previous settings: %v", err)
	}
	settings := l.store.Get()
	settings.Config.Service = svc

	if ok := l.resolvePort(ctx, svc.Port); !ok {
		l.printf("%s Launch aborted\n", text.FgYellow.Sprint("⚠"))
		return OutcomeAborted, nil
	}

	l.report(settings)

	logging.Info("Launcher", "Starting server on %s", svc.Address())
	err := l.serve(ctx, settings)
	if ctx.Err() != nil || err == nil || errors.Is(err, context.Canceled) {
		l.printf("\n%s Server stopped\n", text.FgGreen.Sprint("✓"))
		return OutcomeStopped, nil
	}
	return OutcomeStopped, fmt.Errorf("server on port %d failed: %w", svc.Port, err)
}

// resolvePort returns false when the launch should be aborted.
func (l *Launcher) resolvePort(ctx context.Context, port int) bool {
	if !l.resolver.IsPortInUse(ctx, port) {
		return true
	}

	l.printf("%s Port %d is already in use\n", text.FgYellow.Sprint("⚠"), port)
	owner, err := l.resolver.FindOwner(ctx, port)
	if err != nil {
		logging.Warn("Launcher", "Cannot inspect the owner of port %d: %v", port, err)
	}
	if owner == nil {
		l.printf("Could not identify the process using port %d; trying to start anyway\n", port)
		return true
	}

	l.printf("Port %d is held by %s (pid %d, %s)\n", port, owner.Name, owner.PID, owner.State)
	stop := l.confirm.Confirm(fmt.Sprintf("Stop %s (pid %d) and start the server?", owner.Name, owner.PID), true)
	if !stop.Or(false) {
		return false
	}

	if l.resolver.Terminate(ctx, owner) {
		l.printf("%s Stopped pid %d\n", text.FgGreen.Sprint("✓"), owner.PID)
		select {
		case <-time.After(l.releaseDelay):
		case <-ctx.Done():
			return false
		}
		return true
	}

	l.printf("%s Could not stop pid %d on port %d\n", text.FgRed.Sprint("✗"), owner.PID, port)
	proceed := l.confirm.Confirm("Start the server anyway?", false)
	return proceed.Or(false)
}

func (l *Launcher) report(s config.Settings) {
	host := s.Config.Service.Host
	if host == config.PublicBindHost || host == "" {
		host = "localhost"
	}
	base := config.ServiceConfig{Host: host, Port: s.Config.Service.Port}.BaseURL()

	l.printf("\n%s\n", text.Bold.Sprint("Pixelle is starting"))
	l.printf("  Web UI:             %s/\n", base)
	l.printf("  MCP endpoint:       %s/mcp\n", base)
	l.printf("  Workflow directory: %s\n", s.WorkflowDir())
	l.printf("Press Ctrl+C to stop.\n\n")
}

func (l *Launcher) printf(format string, args ...any) {
	fmt.Fprintf(l.out, format, args...)
}
