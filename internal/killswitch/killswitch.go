// Package killswitch generates firewall rules that block all traffic except
// through the active tunnel and applies them with the platform's firewall
// tool. It never filters packets itself.
package killswitch

import (
	"tunneld/internal/domain"
)

// Backend turns allow/deny intents into concrete rule text and applies or
// restores it. Two implementations exist, selected at startup by platform:
// iptables (Linux) and pf (macOS).
type Backend interface {
	// Enable applies the killswitch ruleset for the given protocol and
	// active server. A backup of the pre-existing ruleset is taken first,
	// unless one already exists; an existing backup is never overwritten.
	Enable(proto domain.Protocol, server domain.LogicalServer) error
	// Disable lifts the killswitch: iptables restores the backup, pf
	// flushes back to default-accept.
	Disable() error
}

// DeviceResolver reports the tunnel's network interface name, recovered from
// the tunnel subprocess log by a collaborator.
type DeviceResolver func() (string, error)
