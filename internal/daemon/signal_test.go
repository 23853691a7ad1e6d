package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestShutdownDisablesKillswitchAndTearsDown(t *testing.T) {
	f := newFixture(t)

	f.roundTrip(t, "connect:srv1:udp")
	f.roundTrip(t, "killswitch:true")

	handler := &SignalHandler{
		state:      f.state,
		supervisor: f.server.supervisor,
		firewall:   f.firewall,
		logger:     zap.NewNop(),
	}
	handler.Shutdown()

	assert.Nil(t, f.state.Snapshot())
	assert.False(t, f.state.KillswitchEnabled())
	assert.Equal(t, 1, f.firewall.disabled)
}

func TestShutdownWhileIdleIsHarmless(t *testing.T) {
	f := newFixture(t)

	handler := &SignalHandler{
		state:      f.state,
		supervisor: f.server.supervisor,
		firewall:   f.firewall,
		logger:     zap.NewNop(),
	}
	handler.Shutdown()

	assert.Nil(t, f.state.Snapshot())
	assert.Zero(t, f.firewall.disabled)
}
