package killswitch

import (
	"os"
	"runtime"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tunneld/internal/cache"
	"tunneld/internal/config"
	"tunneld/utils"
)

var Module = fx.Options(
	fx.Provide(NewBackend),
)

// NewBackend selects the platform implementation at startup.
func NewBackend(cfg *config.Config, dir cache.Dir, runner utils.CommandRunner, logger *zap.Logger) Backend {
	device := LogFileDeviceResolver(dir)
	if runtime.GOOS == "darwin" {
		return NewPF(runner, dir, cfg.Killswitch.CustomRules, device, logger)
	}
	return NewIptables(runner, dir, cfg.Killswitch.CustomRules, device, logger)
}

// LogFileDeviceResolver recovers the tunnel interface name from the tunnel
// subprocess log in the cache directory.
func LogFileDeviceResolver(dir cache.Dir) DeviceResolver {
	return func() (string, error) {
		f, err := os.Open(dir.TunnelLog())
		if err != nil {
			return "", err
		}
		defer f.Close()
		return utils.ParseTunnelDevice(f)
	}
}
