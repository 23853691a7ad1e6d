package tunnel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPidfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openvpn.pid")
	require.NoError(t, os.WriteFile(path, []byte(" 4321\n"), 0o644))

	pid, err := ReadPidfile(path)
	require.NoError(t, err)
	assert.Equal(t, 4321, pid)
}

func TestReadPidfileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openvpn.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o644))

	_, err := ReadPidfile(path)
	assert.Error(t, err)
}

func TestWaitForPidfileAlreadyPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openvpn.pid")
	require.NoError(t, os.WriteFile(path, []byte("77"), 0o644))

	pid, err := WaitForPidfile(path, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 77, pid)
}

func TestWaitForPidfileAppearsLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openvpn.pid")

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte("88\n"), 0o644)
	}()

	pid, err := WaitForPidfile(path, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 88, pid)
}

func TestWaitForPidfileTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openvpn.pid")

	_, err := WaitForPidfile(path, 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrReadinessTimeout)
}
