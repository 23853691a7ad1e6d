package tunnel

import (
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Launcher starts the tunnel subprocess in background mode. The subprocess
// daemonizes itself and reports its own pid through the pid file.
type Launcher interface {
	Launch(configPath, pidPath, logPath string) error
}

type OpenVPNLauncher struct {
	logger *zap.Logger
}

func NewOpenVPNLauncher(logger *zap.Logger) *OpenVPNLauncher {
	return &OpenVPNLauncher{logger: logger}
}

func (l *OpenVPNLauncher) Launch(configPath, pidPath, logPath string) error {
	if _, err := exec.LookPath("openvpn"); err != nil {
		return ErrClientNotFound
	}

	cmd := exec.Command("openvpn",
		"--daemon",
		"--writepid", pidPath,
		"--config", configPath,
		"--log-append", logPath,
	)

	l.logger.Debug("launching tunnel subprocess", zap.String("config", configPath))

	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("error launching openvpn: %w: %s", err, out)
	}
	return nil
}
