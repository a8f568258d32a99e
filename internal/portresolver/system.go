package portresolver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strconv"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// SystemProcesses is the ProcessTable of the running OS.
type SystemProcesses struct{}

func (SystemProcesses) Connections(ctx context.Context) ([]Connection, error) {
	stats, err := psnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("failed to list TCP connections: %w", err)
	}
	conns := make([]Connection, 0, len(stats))
	for _, s := range stats {
		conns = append(conns, Connection{LocalPort: s.Laddr.Port, Status: s.Status, PID: s.Pid})
	}
	return conns, nil
}

func (SystemProcesses) Name(ctx context.Context, pid int32) (string, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return p.NameWithContext(ctx)
}

func (SystemProcesses) Terminate(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return p.TerminateWithContext(ctx)
}

func (SystemProcesses) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return err
	}
	return p.KillWithContext(ctx)
}

func (SystemProcesses) Exists(ctx context.Context, pid int32) (bool, error) {
	ok, err := process.PidExistsWithContext(ctx, pid)
	if err != nil || !ok {
		return false, err
	}
	p, err := process.NewProcessWithContext(ctx, pid)
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	status, err := p.StatusWithContext(ctx)
	if err != nil {
		// The process may have exited between the two lookups.
		return process.PidExistsWithContext(ctx, pid)
	}
	return !slices.Contains(status, process.Zombie), nil
}

// SystemShell runs the kill(1) command.
type SystemShell struct{}

func (SystemShell) Kill(ctx context.Context, signal string, pid int32) error {
	out, err := exec.CommandContext(ctx, "kill", "-"+signal, strconv.Itoa(int(pid))).CombinedOutput()
	if err != nil {
		return fmt.Errorf("kill -%s %d: %w: %s", signal, pid, err, out)
	}
	return nil
}
