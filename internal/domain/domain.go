package domain

import (
	"fmt"
	"strings"
)

// Protocol is the transport the tunnel subprocess runs over. Each protocol
// carries its own fixed list of default ports, used both when building tunnel
// endpoints and when generating killswitch allow-rules.
type Protocol int

const (
	UDP Protocol = iota
	TCP
)

var (
	udpDefaultPorts = []int{5060, 4569, 80, 1194, 51820}
	tcpDefaultPorts = []int{443, 5995, 8443}
)

func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(s) {
	case "udp":
		return UDP, nil
	case "tcp":
		return TCP, nil
	default:
		return 0, fmt.Errorf("unknown protocol %q", s)
	}
}

func (p Protocol) String() string {
	if p == TCP {
		return "tcp"
	}
	return "udp"
}

// DefaultPorts returns the ordered port list tried for this protocol.
func (p Protocol) DefaultPorts() []int {
	if p == TCP {
		return tcpDefaultPorts
	}
	return udpDefaultPorts
}

func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Endpoint is a single (entry address, port) connection target.
type Endpoint struct {
	IP   string
	Port int
}

// ActiveConnection describes the currently established tunnel. At most one
// instance exists; it is owned exclusively by state.Shared.
type ActiveConnection struct {
	PID      int
	Server   LogicalServer
	Protocol Protocol
}
