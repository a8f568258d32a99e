package portresolver

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPermission = errors.New("operation not permitted")

// fakeProcs simulates a process table. A process exits when it receives
// a signal listed in dieOn.
type fakeProcs struct {
	mu      sync.Mutex
	conns   []Connection
	names   map[int32]string
	alive   map[int32]bool
	dieOn   map[string]bool
	signals []string
	apiErr  error
}

func newFakeProcs(dieOn ...string) *fakeProcs {
	f := &fakeProcs{names: map[int32]string{}, alive: map[int32]bool{}, dieOn: map[string]bool{}}
	for _, s := range dieOn {
		f.dieOn[s] = true
	}
	return f
}

func (f *fakeProcs) spawn(pid int32, name string, port uint32, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[pid] = name
	f.alive[pid] = true
	f.conns = append(f.conns, Connection{LocalPort: port, Status: status, PID: pid})
}

func (f *fakeProcs) signal(sig string, pid int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, sig)
	if f.dieOn[sig] {
		f.alive[pid] = false
	}
}

func (f *fakeProcs) Connections(context.Context) ([]Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Connection(nil), f.conns...), nil
}

func (f *fakeProcs) Name(_ context.Context, pid int32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.names[pid]
	if !ok {
		return "", errors.New("no such process")
	}
	return name, nil
}

func (f *fakeProcs) Terminate(_ context.Context, pid int32) error {
	if f.apiErr != nil {
		f.mu.Lock()
		f.signals = append(f.signals, "api-TERM-denied")
		f.mu.Unlock()
		return f.apiErr
	}
	f.signal("api-TERM", pid)
	return nil
}

func (f *fakeProcs) Kill(_ context.Context, pid int32) error {
	if f.apiErr != nil {
		f.mu.Lock()
		f.signals = append(f.signals, "api-KILL-denied")
		f.mu.Unlock()
		return f.apiErr
	}
	f.signal("api-KILL", pid)
	return nil
}

func (f *fakeProcs) Exists(_ context.Context, pid int32) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive[pid], nil
}

func (f *fakeProcs) Signals() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.signals...)
}

type fakeShell struct {
	procs *fakeProcs
}

func (s fakeShell) Kill(_ context.Context, signal string, pid int32) error {
	s.procs.signal("shell-"+signal, pid)
	return nil
}

func fastTimings() Timings {
	return Timings{
		Dial:           200 * time.Millisecond,
		GracefulWait:   20 * time.Millisecond,
		ForceWait:      20 * time.Millisecond,
		ShellTermPause: 5 * time.Millisecond,
		ShellKillPause: 5 * time.Millisecond,
		Poll:           2 * time.Millisecond,
	}
}

func newTestResolver(procs *fakeProcs) *Resolver {
	return New(WithProcessTable(procs), WithShell(fakeShell{procs: procs}), WithTimings(fastTimings()))
}

func TestTerminate_NilOwner(t *testing.T) {
	procs := newFakeProcs("api-TERM")
	r := newTestResolver(procs)

	assert.False(t, r.Terminate(context.Background(), nil))
	assert.False(t, r.Terminate(context.Background(), nil))
	assert.Empty(t, procs.Signals())
}

func TestTerminate_Escalation(t *testing.T) {
	tests := []struct {
		name        string
		dieOn       []string
		apiErr      error
		wantGone    bool
		wantSignals []string
	}{
		{
			name:        "graceful",
			dieOn:       []string{"api-TERM"},
			wantGone:    true,
			wantSignals: []string{"api-TERM"},
		},
		{
			name:        "needs kill",
			dieOn:       []string{"api-KILL"},
			wantGone:    true,
			wantSignals: []string{"api-TERM", "api-KILL"},
		},
		{
			name:        "api denied, shell term works",
			dieOn:       []string{"shell-TERM"},
			apiErr:      errPermission,
			wantGone:    true,
			wantSignals: []string{"api-TERM-denied", "api-KILL-denied", "shell-TERM"},
		},
		{
			name:        "shell kill works",
			dieOn:       []string{"shell-KILL"},
			wantGone:    true,
			wantSignals: []string{"api-TERM", "api-KILL", "shell-TERM", "shell-KILL"},
		},
		{
			name:        "unresponsive",
			wantGone:    false,
			wantSignals: []string{"api-TERM", "api-KILL", "shell-TERM", "shell-KILL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			procs := newFakeProcs(tt.dieOn...)
			procs.apiErr = tt.apiErr
			procs.spawn(4242, "python", 9004, "LISTEN")
			r := newTestResolver(procs)

			owner, err := r.FindOwner(context.Background(), 9004)
			require.NoError(t, err)
			require.NotNil(t, owner)

			assert.Equal(t, tt.wantGone, r.Terminate(context.Background(), owner))
			assert.Equal(t, tt.wantSignals, procs.Signals())
		})
	}
}

func TestTerminate_AlreadyGone(t *testing.T) {
	procs := newFakeProcs()
	r := newTestResolver(procs)

	assert.True(t, r.Terminate(context.Background(), &Owner{PID: 99, Name: "ghost"}))
}

func TestTerminate_ContextCancelled(t *testing.T) {
	procs := newFakeProcs()
	procs.spawn(7, "stubborn", 9004, "LISTEN")
	r := New(WithProcessTable(procs), WithShell(fakeShell{procs: procs}), WithTimings(DefaultTimings()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.False(t, r.Terminate(ctx, &Owner{PID: 7}))
	assert.Less(t, time.Since(start), time.Second)
}

func TestFindOwner(t *testing.T) {
	procs := newFakeProcs()
	procs.spawn(0, "kernel", 9004, "LISTEN")
	procs.spawn(10, "browser", 9004, "TIME_WAIT")
	procs.spawn(11, "other", 8080, "LISTEN")
	procs.spawn(12, "client", 9004, "ESTABLISHED")
	procs.spawn(13, "server", 9004, "LISTEN")
	r := newTestResolver(procs)

	owner, err := r.FindOwner(context.Background(), 9004)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, Owner{PID: 12, Name: "client", State: StateEstablished}, *owner)

	owner, err = r.FindOwner(context.Background(), 1234)
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestFindOwner_UnknownName(t *testing.T) {
	procs := newFakeProcs()
	procs.conns = []Connection{{LocalPort: 9004, Status: "LISTEN", PID: 55}}
	owner, err := newTestResolver(procs).FindOwner(context.Background(), 9004)
	require.NoError(t, err)
	assert.Equal(t, "unknown", owner.Name)
	assert.Equal(t, StateListening, owner.State)
}

func TestIsPortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port

	r := New(WithTimings(fastTimings()))
	assert.True(t, r.IsPortInUse(context.Background(), port))

	require.NoError(t, l.Close())
	assert.False(t, r.IsPortInUse(context.Background(), port))
}

func TestSystemProcesses_FindsOwnListener(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	owner, err := New().FindOwner(context.Background(), port)
	if err != nil || owner == nil {
		t.Skipf("process table not readable here: %v", err)
	}
	assert.Equal(t, int32(os.Getpid()), owner.PID)
	assert.Equal(t, StateListening, owner.State)

	alive, err := SystemProcesses{}.Exists(context.Background(), owner.PID)
	require.NoError(t, err)
	assert.True(t, alive)
}
