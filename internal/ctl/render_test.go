package ctl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tunneld/internal/directory"
	"tunneld/internal/domain"
	"tunneld/internal/wire"
)

func TestRenderStatusDisconnected(t *testing.T) {
	var out strings.Builder
	RenderStatus(&out, wire.StatusResponse{}, StatusDetails{})

	assert.Contains(t, out.String(), "disconnected")
	assert.NotContains(t, out.String(), "Server:")
}

func TestRenderStatusConnected(t *testing.T) {
	var out strings.Builder
	RenderStatus(&out, wire.StatusResponse{
		Connected: &wire.ConnectedStatus{PID: 1000, Name: "NL#1", Protocol: domain.UDP},
	}, StatusDetails{Device: "tun0", PublicIP: "203.0.113.5"})

	s := out.String()
	assert.Contains(t, s, "NL#1")
	assert.Contains(t, s, "udp")
	assert.Contains(t, s, "1000")
	assert.Contains(t, s, "tun0")
	assert.Contains(t, s, "203.0.113.5")
}

func TestRenderServers(t *testing.T) {
	var out strings.Builder
	RenderServers(&out, directory.Directory{
		{ID: "srv1", Name: "NL#1", ExitCountry: "NL", Load: 42, Score: 1.5,
			Features: domain.FeatureP2P | domain.FeatureStreaming},
	})

	s := out.String()
	assert.Contains(t, s, "srv1")
	assert.Contains(t, s, "42%")
	assert.Contains(t, s, "p2p,streaming")
}
