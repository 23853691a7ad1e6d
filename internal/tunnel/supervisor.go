package tunnel

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"tunneld/internal/cache"
	"tunneld/internal/config"
	"tunneld/internal/domain"
	"tunneld/internal/killswitch"
	"tunneld/internal/state"
	"tunneld/utils"
)

const teardownAttempts = 3

// Metrics counts supervisor events that are invisible from the outside, such
// as teardown attempts that needed escalation.
type Metrics interface {
	RecordTeardownRetry()
}

// Supervisor owns the single tunnel subprocess: it renders its configuration,
// launches and terminates it, and detects readiness through the pid file.
//
// Connect, Disconnect and Teardown mutate shared state and must be called
// with the state write lock held; the blocking subprocess waits deliberately
// happen under that lock to serialize control requests behind an in-flight
// transition.
type Supervisor struct {
	state            *state.Shared
	cfg              *config.Config
	dir              cache.Dir
	launcher         Launcher
	procs            utils.ProcessController
	firewall         killswitch.Backend
	metrics          Metrics
	logger           *zap.Logger
	readinessTimeout time.Duration
}

func NewSupervisor(
	st *state.Shared,
	cfg *config.Config,
	dir cache.Dir,
	launcher Launcher,
	procs utils.ProcessController,
	firewall killswitch.Backend,
	metrics Metrics,
	logger *zap.Logger,
) *Supervisor {
	return &Supervisor{
		state:            st,
		cfg:              cfg,
		dir:              dir,
		launcher:         launcher,
		procs:            procs,
		firewall:         firewall,
		metrics:          metrics,
		logger:           logger,
		readinessTimeout: time.Duration(cfg.ReadinessTimeoutSecs) * time.Second,
	}
}

// Connect establishes a tunnel to the given server. An unknown server id is
// logged and treated as handled; connecting to the already-active server and
// protocol is a no-op.
func (s *Supervisor) Connect(serverID string, proto domain.Protocol) error {
	server, ok := s.state.Servers[serverID]
	if !ok {
		s.logger.Error("no server found with requested id", zap.String("server_id", serverID))
		return nil
	}

	if active := s.state.Active; active != nil {
		sameServer := active.Server.ID == serverID
		sameProtocol := active.Protocol == proto

		if sameServer && sameProtocol {
			s.logger.Debug("already connected to requested server, doing nothing",
				zap.String("server_id", serverID))
			return nil
		}

		// The killswitch rules are port-matched per protocol. Re-apply
		// them for the new protocol while the old tunnel still exists,
		// otherwise there is a window where no rule matches the
		// outgoing tunnel traffic.
		if !sameProtocol && s.state.Killswitch.Enabled {
			s.logger.Debug("protocol changed with killswitch enabled, reapplying rules first",
				zap.String("protocol", proto.String()))
			if err := s.firewall.Enable(proto, server); err != nil {
				return fmt.Errorf("failed to reapply killswitch rules: %w", err)
			}
		}

		if err := s.procs.Terminate(active.PID); err != nil {
			return err
		}
		s.procs.WaitExit(active.PID)
	}

	s.logger.Info("connecting to server",
		zap.String("server", server.Name),
		zap.String("protocol", proto.String()))

	contents, err := s.renderConfig(server, proto)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.dir.TunnelConfig(), []byte(contents), 0o600); err != nil {
		return fmt.Errorf("cannot write tunnel configuration: %w", err)
	}

	// A leftover pid file would satisfy the readiness wait immediately.
	_ = os.Remove(s.dir.PidFile())

	if err := s.launcher.Launch(s.dir.TunnelConfig(), s.dir.PidFile(), s.dir.TunnelLog()); err != nil {
		return err
	}

	pid, err := WaitForPidfile(s.dir.PidFile(), s.readinessTimeout)
	if err != nil {
		return err
	}

	s.state.Active = &domain.ActiveConnection{
		PID:      pid,
		Server:   server,
		Protocol: proto,
	}

	s.logger.Info("connected",
		zap.String("server", server.Name),
		zap.Int("pid", pid),
		zap.String("protocol", proto.String()))
	return nil
}

// Disconnect terminates the active tunnel. Disconnecting while idle is a
// successful no-op. On failure to signal the process, state is left unchanged.
func (s *Supervisor) Disconnect() error {
	active := s.state.Active
	if active == nil {
		s.logger.Debug("no running tunnel subprocess, doing nothing")
		return nil
	}

	if err := s.procs.Terminate(active.PID); err != nil {
		return err
	}
	s.procs.WaitExit(active.PID)

	s.state.Active = nil
	if err := os.Remove(s.dir.PidFile()); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove pid file", zap.Error(err))
	}

	s.logger.Info("disconnected tunnel subprocess", zap.Int("pid", active.PID))
	return nil
}

// Teardown is the best-effort variant used on shutdown. Termination is
// escalated to a forced kill and retried; failures are logged and never block
// the caller.
func (s *Supervisor) Teardown(active *domain.ActiveConnection) {
	if active == nil {
		s.logger.Debug("no active tunnel subprocess, skipping cleanup")
		return
	}

	for attempt := 1; attempt <= teardownAttempts; attempt++ {
		err := s.procs.Terminate(active.PID)
		if err == nil {
			s.procs.WaitExit(active.PID)
			_ = os.Remove(s.dir.PidFile())
			s.logger.Debug("tunnel subprocess terminated", zap.Int("pid", active.PID))
			return
		}

		s.metrics.RecordTeardownRetry()
		s.logger.Error("failed to terminate tunnel subprocess, escalating",
			zap.Int("pid", active.PID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if killErr := s.procs.Kill(active.PID); killErr == nil {
			s.procs.WaitExit(active.PID)
			_ = os.Remove(s.dir.PidFile())
			return
		}
	}

	s.logger.Error("giving up on tunnel subprocess cleanup", zap.Int("pid", active.PID))
}

// CleanupOrphan terminates a tunnel subprocess left behind by a previous
// daemon run, best-effort.
func (s *Supervisor) CleanupOrphan() {
	pid, err := ReadPidfile(s.dir.PidFile())
	if err != nil {
		return
	}

	s.logger.Debug("found leftover tunnel pid file, attempting cleanup", zap.Int("pid", pid))
	if s.procs.Exists(pid) {
		if err := s.procs.Terminate(pid); err != nil {
			s.logger.Error("unable to clean up orphan tunnel subprocess", zap.Error(err))
			return
		}
		s.procs.WaitExit(pid)
	}
	_ = os.Remove(s.dir.PidFile())
}

func (s *Supervisor) renderConfig(server domain.LogicalServer, proto domain.Protocol) (string, error) {
	creds := s.cfg.CredentialsPath
	if creds == "" {
		return "", ErrCredentialsNotConfigured
	}
	if _, err := os.Stat(creds); err != nil {
		return "", fmt.Errorf("%w: %s", ErrCredentialsNotFound, creds)
	}

	updateResolvConf := s.cfg.UpdateResolvConfPath
	if updateResolvConf != "" {
		if _, err := os.Stat(updateResolvConf); err != nil {
			return "", fmt.Errorf("update-resolv-conf helper not found at %s, this is an openvpn dependency", updateResolvConf)
		}
	}

	return RenderConfig(server, proto, creds, updateResolvConf)
}
