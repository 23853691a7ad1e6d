package tunnel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunneld/internal/domain"
)

func TestRenderConfigCrossProduct(t *testing.T) {
	server := domain.LogicalServer{
		ID:   "srv1",
		Name: "NL#1",
		Servers: []domain.PhysicalServer{
			{EntryIP: "198.51.100.1"},
			{EntryIP: "198.51.100.2"},
		},
	}

	rendered, err := RenderConfig(server, domain.UDP, "/etc/tunneld/credentials", "")
	require.NoError(t, err)

	// Every entry address is paired with every default port.
	remotes := 0
	for _, line := range strings.Split(rendered, "\n") {
		if strings.HasPrefix(line, "remote ") {
			remotes++
		}
	}
	assert.Equal(t, len(server.Servers)*len(domain.UDP.DefaultPorts()), remotes)

	assert.Contains(t, rendered, "proto udp")
	assert.Contains(t, rendered, "remote 198.51.100.1 5060")
	assert.Contains(t, rendered, "remote 198.51.100.2 51820")
	assert.Contains(t, rendered, "auth-user-pass /etc/tunneld/credentials")
	assert.NotContains(t, rendered, "script-security")
}

func TestRenderConfigTCPPorts(t *testing.T) {
	server := domain.LogicalServer{
		Servers: []domain.PhysicalServer{{EntryIP: "203.0.113.9"}},
	}

	rendered, err := RenderConfig(server, domain.TCP, "/etc/tunneld/credentials", "")
	require.NoError(t, err)

	assert.Contains(t, rendered, "proto tcp")
	assert.Contains(t, rendered, "remote 203.0.113.9 443")
	assert.Contains(t, rendered, "remote 203.0.113.9 5995")
	assert.Contains(t, rendered, "remote 203.0.113.9 8443")
	assert.NotContains(t, rendered, "1194")
}

func TestRenderConfigResolvConfHelper(t *testing.T) {
	server := domain.LogicalServer{
		Servers: []domain.PhysicalServer{{EntryIP: "203.0.113.9"}},
	}

	rendered, err := RenderConfig(server, domain.UDP, "/etc/tunneld/credentials", "/etc/openvpn/update-resolv-conf")
	require.NoError(t, err)

	assert.Contains(t, rendered, "script-security 2")
	assert.Contains(t, rendered, "up /etc/openvpn/update-resolv-conf")
	assert.Contains(t, rendered, "down /etc/openvpn/update-resolv-conf")
}
