package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTunnelDevice(t *testing.T) {
	log := strings.Join([]string{
		"2024-01-02 10:11:12 OpenVPN 2.6.8 x86_64-pc-linux-gnu",
		"2024-01-02 10:11:13 TCP/UDP: Preserving recently used remote address",
		"2024-01-02 10:11:14 TUN/TAP device tun0 opened",
		"2024-01-02 10:11:15 Initialization Sequence Completed",
	}, "\n")

	device, err := ParseTunnelDevice(strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, "tun0", device)
}

func TestParseTunnelDeviceLastMatchWins(t *testing.T) {
	log := "TUN/TAP device tun0 opened\nTUN/TAP device tun1 opened\n"

	device, err := ParseTunnelDevice(strings.NewReader(log))
	require.NoError(t, err)
	assert.Equal(t, "tun1", device)
}

func TestParseTunnelDeviceMissing(t *testing.T) {
	_, err := ParseTunnelDevice(strings.NewReader("nothing relevant here\n"))
	assert.Error(t, err)
}
