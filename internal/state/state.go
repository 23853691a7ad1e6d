// Package state holds the one piece of mutable data shared between the
// control server's accept loop and the signal handler.
package state

import (
	"sync"

	"tunneld/internal/domain"
)

// Killswitch tracks whether firewall rules are currently applied.
type Killswitch struct {
	Enabled bool
}

// Shared is the exclusive-access store for the active connection and the
// killswitch flag. The embedded lock is the single synchronization point of
// the daemon: status reads take the read lock, everything that can mutate
// connection or killswitch state takes the write lock for the full duration
// of the operation, including blocking subprocess waits.
type Shared struct {
	sync.RWMutex

	// Servers is the id→record directory snapshot taken at startup. It is
	// never mutated after construction and may be read without the lock.
	Servers map[string]domain.LogicalServer

	// Active is the current connection, nil when disconnected. Guarded by
	// the embedded lock.
	Active *domain.ActiveConnection

	// Killswitch is guarded by the embedded lock.
	Killswitch Killswitch
}

func New(servers map[string]domain.LogicalServer) *Shared {
	return &Shared{Servers: servers}
}

// Snapshot returns a copy of the active connection under the read lock, or
// nil when disconnected.
func (s *Shared) Snapshot() *domain.ActiveConnection {
	s.RLock()
	defer s.RUnlock()
	if s.Active == nil {
		return nil
	}
	active := *s.Active
	return &active
}

// KillswitchEnabled reads the killswitch flag under the read lock.
func (s *Shared) KillswitchEnabled() bool {
	s.RLock()
	defer s.RUnlock()
	return s.Killswitch.Enabled
}
