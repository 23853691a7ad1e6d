// Package app assembles the daemon's dependency graph.
package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"tunneld/internal/cache"
	"tunneld/internal/config"
	"tunneld/internal/daemon"
	"tunneld/internal/directory"
	"tunneld/internal/killswitch"
	"tunneld/internal/metrics"
	"tunneld/internal/state"
	"tunneld/internal/tunnel"
	"tunneld/utils"
)

func New(configPath string, logger *zap.Logger) *fx.App {
	return fx.New(
		fx.Supply(config.Path(configPath)),
		fx.Supply(logger),
		fx.Provide(
			func(cfg *config.Config) cache.Dir { return cache.New(cfg.CacheDir) },
			func() utils.CommandRunner { return utils.ExecCommandRunner{} },
			func() utils.ProcessController { return utils.GopsutilProcessController{} },
			func(servers directory.Directory) *state.Shared { return state.New(servers.AsMap()) },
		),
		config.Module,
		directory.Module,
		killswitch.Module,
		tunnel.Module,
		metrics.Module,
		daemon.Module,
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

// Run starts the daemon and blocks until it is told to stop. The returned
// value is the process exit code.
func Run(configPath string, logger *zap.Logger) int {
	application := New(configPath, logger)

	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err := application.Start(startCtx); err != nil {
		logger.Error("failed to start daemon", zap.Error(err))
		return 1
	}

	sig := <-application.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancelStop()
	if err := application.Stop(stopCtx); err != nil {
		logger.Error("shutdown did not complete cleanly", zap.Error(err))
		return 1
	}
	return sig.ExitCode
}
