package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunneld/internal/domain"
)

func TestSnapshotIsACopy(t *testing.T) {
	st := New(nil)
	st.Active = &domain.ActiveConnection{PID: 1000, Protocol: domain.UDP}

	snap := st.Snapshot()
	require.NotNil(t, snap)
	snap.PID = 9999

	assert.Equal(t, 1000, st.Active.PID)
}

func TestSnapshotWhileDisconnected(t *testing.T) {
	assert.Nil(t, New(nil).Snapshot())
}

func TestKillswitchEnabled(t *testing.T) {
	st := New(nil)
	assert.False(t, st.KillswitchEnabled())

	st.Killswitch.Enabled = true
	assert.True(t, st.KillswitchEnabled())
}
