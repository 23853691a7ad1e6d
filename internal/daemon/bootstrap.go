package daemon

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tunneld/internal/cache"
	"tunneld/internal/config"
	"tunneld/internal/directory"
	"tunneld/internal/killswitch"
	"tunneld/internal/state"
	"tunneld/internal/tunnel"
)

// RegisterBootstrap runs the startup sequence before the control socket opens:
// clean up any tunnel subprocess orphaned by a previous run, optionally
// connect to the default server, and apply configured firewall rules once a
// connection exists. Autoconnect failures are logged, not fatal; the daemon
// still comes up and serves requests.
func RegisterBootstrap(
	lc fx.Lifecycle,
	cfg *config.Config,
	dir cache.Dir,
	servers directory.Directory,
	st *state.Shared,
	supervisor *tunnel.Supervisor,
	firewall killswitch.Backend,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := dir.Ensure(); err != nil {
				return err
			}

			st.Lock()
			defer st.Unlock()

			supervisor.CleanupOrphan()

			if cfg.AutostartDefault {
				pick := servers.Filter(cfg.DefaultCriteria).Select(cfg.DefaultSelect)
				if pick == nil {
					logger.Warn("no server matches the default criteria, skipping autoconnect")
				} else if err := supervisor.Connect(pick.ID, cfg.DefaultProtocol); err != nil {
					logger.Error("autoconnect failed", zap.Error(err))
				}
			}

			if cfg.Killswitch.Enable {
				active := st.Active
				if active == nil {
					logger.Warn("killswitch requested at startup but no connection is active")
				} else if err := firewall.Enable(active.Protocol, active.Server); err != nil {
					logger.Error("failed to enable killswitch at startup", zap.Error(err))
				} else {
					st.Killswitch.Enabled = true
				}
			}

			return nil
		},
	})
}
