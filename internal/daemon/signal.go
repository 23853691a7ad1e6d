package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tunneld/internal/killswitch"
	"tunneld/internal/state"
	"tunneld/internal/tunnel"
)

// SignalHandler cleans up on SIGINT and SIGTERM: firewall rules come off
// first so the machine is not left without connectivity, then the tunnel
// subprocess is torn down. The daemon always exits zero on a signal.
type SignalHandler struct {
	state      *state.Shared
	supervisor *tunnel.Supervisor
	firewall   killswitch.Backend
	logger     *zap.Logger
}

func NewSignalHandler(
	st *state.Shared,
	supervisor *tunnel.Supervisor,
	firewall killswitch.Backend,
	logger *zap.Logger,
) *SignalHandler {
	return &SignalHandler{
		state:      st,
		supervisor: supervisor,
		firewall:   firewall,
		logger:     logger,
	}
}

// Shutdown runs the cleanup sequence under the write lock, so a control
// request in flight finishes before teardown starts.
func (h *SignalHandler) Shutdown() {
	h.state.Lock()
	defer h.state.Unlock()

	if h.state.Killswitch.Enabled {
		if err := h.firewall.Disable(); err != nil {
			h.logger.Error("failed to disable killswitch during shutdown", zap.Error(err))
		} else {
			h.state.Killswitch.Enabled = false
		}
	}

	h.supervisor.Teardown(h.state.Active)
	h.state.Active = nil
}

// RegisterSignalHandler requests an orderly stop on SIGINT or SIGTERM. The
// cleanup itself runs in OnStop so it also happens when the stop comes from
// elsewhere, such as the service manager.
func RegisterSignalHandler(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	handler *SignalHandler,
	logger *zap.Logger,
) {
	sigs := make(chan os.Signal, 1)
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				select {
				case sig := <-sigs:
					logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
					_ = shutdowner.Shutdown(fx.ExitCode(0))
				case <-done:
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			signal.Stop(sigs)
			close(done)
			handler.Shutdown()
			return nil
		},
	})
}
