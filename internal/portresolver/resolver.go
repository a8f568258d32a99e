// Package portresolver detects whether a TCP port is taken, identifies
// the owning process and terminates it with escalating force.
package portresolver

import (
	"context"
	"net"
	"strconv"
	"time"

	"pixelle/pkg/logging"
)

// ConnState is the state of the connection that ties a process to a port.
type ConnState string

const (
	StateListening   ConnState = "listening"
	StateEstablished ConnState = "established"
)

// Owner is the process bound to a port. It is only valid for the
// duration of one resolution.
type Owner struct {
	PID   int32
	Name  string
	State ConnState
}

// Connection is one TCP socket as reported by the OS.
type Connection struct {
	LocalPort uint32
	// Status is the OS connection state, e.g. "LISTEN".
	Status string
	PID    int32
}

// ProcessTable is the OS process API.
type ProcessTable interface {
	Connections(ctx context.Context) ([]Connection, error)
	Name(ctx context.Context, pid int32) (string, error)
	// Terminate sends a graceful termination signal.
	Terminate(ctx context.Context, pid int32) error
	// Kill sends a forceful kill signal.
	Kill(ctx context.Context, pid int32) error
	// Exists reports whether pid is alive. Zombies are not alive.
	Exists(ctx context.Context, pid int32) (bool, error)
}

// Shell runs the OS kill command.
type Shell interface {
	Kill(ctx context.Context, signal string, pid int32) error
}

// Timings bounds every wait in the escalation.
type Timings struct {
	Dial           time.Duration
	GracefulWait   time.Duration
	ForceWait      time.Duration
	ShellTermPause time.Duration
	ShellKillPause time.Duration
	Poll           time.Duration
}

// DefaultTimings returns the production timings.
func DefaultTimings() Timings {
	return Timings{
		Dial:           time.Second,
		GracefulWait:   3 * time.Second,
		ForceWait:      2 * time.Second,
		ShellTermPause: 2 * time.Second,
		ShellKillPause: time.Second,
		Poll:           100 * time.Millisecond,
	}
}

// Resolver resolves port conflicts.
type Resolver struct {
	procs   ProcessTable
	shell   Shell
	timings Timings
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithProcessTable replaces the OS process table.
func WithProcessTable(p ProcessTable) Option {
	return func(r *Resolver) {
		r.procs = p
	}
}

// WithShell replaces the kill command runner.
func WithShell(s Shell) Option {
	return func(r *Resolver) {
		r.shell = s
	}
}

// WithTimings replaces DefaultTimings.
func WithTimings(t Timings) Option {
	return func(r *Resolver) {
		r.timings = t
	}
}

// New creates a Resolver backed by the OS.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		procs:   SystemProcesses{},
		shell:   SystemShell{},
		timings: DefaultTimings(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsPortInUse tries a TCP connection to localhost:port. Any error counts
// as free, so a busy port may be missed but a free one is never reported
// as busy.
func (r *Resolver) IsPortInUse(ctx context.Context, port int) bool {
	d := net.Dialer{Timeout: r.timings.Dial}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// FindOwner returns the first process with a listening or established
// connection on port, or nil if there is none.
func (r *Resolver) FindOwner(ctx context.Context, port int) (*Owner, error) {
	conns, err := r.procs.Connections(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range conns {
		if c.PID == 0 || int(c.LocalPort) != port {
			continue
		}
		var state ConnState
		switch c.Status {
		case "LISTEN":
			state = StateListening
		case "ESTABLISHED":
			state = StateEstablished
		default:
			continue
		}

		name, err := r.procs.Name(ctx, c.PID)
		if err != nil {
			logging.Debug("Resolver", "Cannot read name of pid %d: %v", c.PID, err)
			name = "unknown"
		}
		return &Owner{PID: c.PID, Name: name, State: state}, nil
	}
	return nil, nil
}

// Terminate stops owner and reports whether it is confirmed gone. It
// tries a graceful signal, then a forceful one, then the shell kill
// command. Errors in each tier are absorbed. A nil owner returns false.
func (r *Resolver) Terminate(ctx context.Context, owner *Owner) bool {
	if owner == nil {
		return false
	}
	pid := owner.PID
	t := r.timings

	logging.Info("Resolver", "Terminating %s (pid %d)", owner.Name, pid)
	if err := r.procs.Terminate(ctx, pid); err != nil {
		logging.Warn("Resolver", "Graceful termination of pid %d failed: %v", pid, err)
	}
	if r.waitGone(ctx, pid, t.GracefulWait) {
		logging.Info("Resolver", "Process %d exited after SIGTERM", pid)
		return true
	}

	if err := r.procs.Kill(ctx, pid); err != nil {
		logging.Warn("Resolver", "Kill of pid %d failed: %v", pid, err)
	}
	if r.waitGone(ctx, pid, t.ForceWait) {
		logging.Info("Resolver", "Process %d exited after SIGKILL", pid)
		return true
	}

	for _, step := range []struct {
		signal string
		pause  time.Duration
	}{
		{"TERM", t.ShellTermPause},
		{"KILL", t.ShellKillPause},
	} {
		if err := r.shell.Kill(ctx, step.signal, pid); err != nil {
			logging.Warn("Resolver", "kill -%s %d failed: %v", step.signal, pid, err)
		}
		if !sleep(ctx, step.pause) {
			return !r.alive(ctx, pid)
		}
		if !r.alive(ctx, pid) {
			logging.Info("Resolver", "Process %d exited after kill -%s", pid, step.signal)
			return true
		}
	}

	logging.Warn("Resolver", "Process %d (%s) is still running", pid, owner.Name)
	return false
}

// alive treats lookup errors as alive; only a confirmed absence counts.
func (r *Resolver) alive(ctx context.Context, pid int32) bool {
	ok, err := r.procs.Exists(ctx, pid)
	if err != nil {
		logging.Debug("Resolver", "Cannot check pid %d: %v", pid, err)
		return true
	}
	return ok
}

func (r *Resolver) waitGone(ctx context.Context, pid int32, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !r.alive(ctx, pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		if !sleep(ctx, r.timings.Poll) {
			return false
		}
	}
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
