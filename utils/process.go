package utils

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessController signals and observes processes tracked by pid. The tunnel
// subprocess daemonizes itself, so it is never a child of ours and cannot be
// reaped through os/exec.
type ProcessController interface {
	Exists(pid int) bool
	// Terminate sends SIGTERM. The error reports a missing process or a
	// failed signal; it says nothing about whether the process has exited.
	Terminate(pid int) error
	// Kill forcibly ends the process.
	Kill(pid int) error
	// WaitExit blocks until the process is gone.
	WaitExit(pid int)
}

type GopsutilProcessController struct{}

func (GopsutilProcessController) Exists(pid int) bool {
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

func (GopsutilProcessController) Terminate(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("no such process: pid %d", pid)
	}
	if err := p.Terminate(); err != nil {
		return fmt.Errorf("failed to send SIGTERM to pid %d: %w", pid, err)
	}
	return nil
}

func (GopsutilProcessController) Kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("no such process: pid %d", pid)
	}
	if err := p.Kill(); err != nil {
		return fmt.Errorf("failed to kill pid %d: %w", pid, err)
	}
	return nil
}

func (GopsutilProcessController) WaitExit(pid int) {
	for {
		ok, err := process.PidExists(int32(pid))
		if err != nil || !ok {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}
