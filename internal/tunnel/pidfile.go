package tunnel

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Each filesystem-event cycle falls back to an existence check after this
// long, covering filesystems where change events can be lost.
const pidfilePollInterval = 5 * time.Second

// ReadPidfile parses the integer pid the tunnel subprocess wrote.
func ReadPidfile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", path, err)
	}
	return pid, nil
}

// WaitForPidfile blocks until the pid file exists and parses, watching the
// parent directory for changes. It gives up after timeout with
// ErrReadinessTimeout.
func WaitForPidfile(path string, timeout time.Duration) (int, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return 0, fmt.Errorf("cannot watch for pid file: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return 0, fmt.Errorf("cannot watch %s: %w", filepath.Dir(path), err)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if pid, err := ReadPidfile(path); err == nil {
			return pid, nil
		}

		select {
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
		case err := <-watcher.Errors:
			return 0, fmt.Errorf("error watching for pid file: %w", err)
		case <-time.After(pidfilePollInterval):
			// re-check existence
		case <-deadline.C:
			return 0, ErrReadinessTimeout
		}
	}
}
