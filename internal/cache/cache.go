// Package cache knows the daemon's private runtime directory and the fixed
// file names kept inside it. Everything the daemon persists lives here: the
// control socket, the rendered tunnel configuration, the pid file, firewall
// backups and the on-disk server directory.
package cache

import (
	"os"
	"path/filepath"
)

const DefaultDir = "/etc/tunneld"

// Dir resolves cache file locations. A zero value is not usable; construct
// with New.
type Dir struct {
	path string
}

func New(path string) Dir {
	if path == "" {
		path = DefaultDir
	}
	return Dir{path: path}
}

// Ensure creates the directory if it does not exist yet.
func (d Dir) Ensure() error {
	return os.MkdirAll(d.path, 0o755)
}

func (d Dir) Path() string             { return d.path }
func (d Dir) Socket() string           { return filepath.Join(d.path, "socket") }
func (d Dir) TunnelConfig() string     { return filepath.Join(d.path, "client.ovpn") }
func (d Dir) PidFile() string          { return filepath.Join(d.path, "openvpn.pid") }
func (d Dir) TunnelLog() string        { return filepath.Join(d.path, "openvpn.log") }
func (d Dir) FirewallBackup() string   { return filepath.Join(d.path, "iptables.backup") }
func (d Dir) FirewallRuleFile() string { return filepath.Join(d.path, "pf.conf") }
func (d Dir) ServerDirectory() string  { return filepath.Join(d.path, "servers.json") }
func (d Dir) DaemonLog() string        { return filepath.Join(d.path, "tunneld.log") }
