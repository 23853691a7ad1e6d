// Package svc registers tunneld with the system service manager so the
// daemon starts at boot.
package svc

import (
	"fmt"

	"github.com/kardianos/service"
)

type program struct{}

// The daemon process is managed by its own lifecycle; these hooks only
// matter when the binary runs directly under the service manager, which
// execs `tunneld daemon`.
func (program) Start(s service.Service) error { return nil }
func (program) Stop(s service.Service) error  { return nil }

type Manager struct {
	svc service.Service
}

// New describes the daemon to the service manager. A non-empty configPath is
// baked into the registered command line.
func New(configPath string) (*Manager, error) {
	arguments := []string{"daemon"}
	if configPath != "" {
		arguments = append(arguments, "--config", configPath)
	}

	cfg := &service.Config{
		Name:        "tunneld",
		DisplayName: "tunneld",
		Description: "VPN tunnel daemon",
		Arguments:   arguments,
	}

	s, err := service.New(program{}, cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot describe service: %w", err)
	}
	return &Manager{svc: s}, nil
}

func (m *Manager) Install() error   { return m.svc.Install() }
func (m *Manager) Uninstall() error { return m.svc.Uninstall() }
func (m *Manager) Start() error     { return m.svc.Start() }
func (m *Manager) Stop() error      { return m.svc.Stop() }

// Control dispatches one of install, uninstall, start or stop by name.
func (m *Manager) Control(action string) error {
	switch action {
	case "install":
		return m.Install()
	case "uninstall":
		return m.Uninstall()
	case "start":
		return m.Start()
	case "stop":
		return m.Stop()
	default:
		return fmt.Errorf("unknown service action %q", action)
	}
}
