package utils

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner abstracts external tool invocation so firewall and service
// management code can be exercised in tests without touching the system.
type CommandRunner interface {
	// Run executes the command and waits for it to finish. A non-zero exit
	// status is returned as an error carrying the combined output.
	Run(name string, args ...string) error
	// Output executes the command and returns its stdout.
	Output(name string, args ...string) ([]byte, error)
	// RunInput executes the command feeding input on stdin.
	RunInput(input []byte, name string, args ...string) error
}

type ExecCommandRunner struct{}

func (ExecCommandRunner) Run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, bytes.TrimSpace(out))
	}
	return nil
}

func (ExecCommandRunner) Output(name string, args ...string) ([]byte, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

func (ExecCommandRunner) RunInput(input []byte, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(input)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, bytes.TrimSpace(out))
	}
	return nil
}
