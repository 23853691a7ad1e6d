// Package daemon is the long-running side of tunneld: the control socket
// server, the startup sequence and the shutdown signal handler.
package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tunneld/internal/cache"
	"tunneld/internal/killswitch"
	"tunneld/internal/metrics"
	"tunneld/internal/state"
	"tunneld/internal/tunnel"
	"tunneld/internal/wire"
)

// Metrics is the slice of the collector the control server reports into.
type Metrics interface {
	RecordRequest(command string)
	RecordConnect(err error)
	RecordDisconnect()
	RecordKillswitchToggle(enabled bool)
	SetConnected(connected bool)
}

// ControlServer accepts client connections on the unix control socket and
// dispatches their requests. Connections are served one at a time: every
// request except status mutates shared state under the write lock, and the
// serial accept loop keeps the externally visible request order equal to the
// order clients connected in.
type ControlServer struct {
	state      *state.Shared
	supervisor *tunnel.Supervisor
	firewall   killswitch.Backend
	socketPath string
	metrics    Metrics
	logger     *zap.Logger

	listener net.Listener
}

func NewControlServer(
	st *state.Shared,
	supervisor *tunnel.Supervisor,
	firewall killswitch.Backend,
	dir cache.Dir,
	collector *metrics.Collector,
	logger *zap.Logger,
) *ControlServer {
	return &ControlServer{
		state:      st,
		supervisor: supervisor,
		firewall:   firewall,
		socketPath: dir.Socket(),
		metrics:    collector,
		logger:     logger,
	}
}

// Listen binds the control socket, replacing a stale one left behind by a
// previous run.
func (s *ControlServer) Listen() error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = listener
	s.logger.Info("listening on control socket", zap.String("path", s.socketPath))
	return nil
}

// Serve runs the accept loop until the listener is closed.
func (s *ControlServer) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("failed to accept client connection", zap.Error(err))
			continue
		}
		s.handle(conn)
	}
}

func (s *ControlServer) Close() error {
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
		err = removeErr
	}
	return err
}

// handle reads one request from the connection and dispatches it. Clients
// half-close after writing, so the payload ends at EOF. A message that fails
// to decode is logged and the connection dropped without a response.
func (s *ControlServer) handle(conn net.Conn) {
	defer conn.Close()

	data, err := io.ReadAll(conn)
	if err != nil {
		s.logger.Error("failed to read client request", zap.Error(err))
		return
	}

	req, err := wire.DecodeRequest(strings.TrimSpace(string(data)))
	if err != nil {
		s.logger.Error("discarding undecodable request", zap.Error(err))
		return
	}

	switch r := req.(type) {
	case wire.StatusRequest:
		s.metrics.RecordRequest("status")
		s.handleStatus(conn)
	case wire.ConnectRequest:
		s.metrics.RecordRequest("connect")
		s.handleConnect(r)
	case wire.DisconnectRequest:
		s.metrics.RecordRequest("disconnect")
		s.handleDisconnect()
	case wire.KillswitchRequest:
		s.metrics.RecordRequest("killswitch")
		s.handleKillswitch(r.Enable)
	}
}

func (s *ControlServer) handleStatus(conn net.Conn) {
	s.state.RLock()
	resp := wire.StatusResponse{}
	if active := s.state.Active; active != nil {
		resp.Connected = &wire.ConnectedStatus{
			PID:      active.PID,
			Name:     active.Server.Name,
			Protocol: active.Protocol,
		}
	}
	s.state.RUnlock()

	if _, err := conn.Write(wire.EncodeResponse(resp)); err != nil {
		s.logger.Error("failed to write status response", zap.Error(err))
	}
}

func (s *ControlServer) handleConnect(req wire.ConnectRequest) {
	s.state.Lock()
	defer s.state.Unlock()

	err := s.supervisor.Connect(req.ServerID, req.Protocol)
	s.metrics.RecordConnect(err)
	if err != nil {
		s.logger.Error("connect request failed",
			zap.String("server_id", req.ServerID),
			zap.Error(err))
		return
	}
	s.metrics.SetConnected(s.state.Active != nil)
}

func (s *ControlServer) handleDisconnect() {
	s.state.Lock()
	defer s.state.Unlock()

	if err := s.supervisor.Disconnect(); err != nil {
		s.logger.Error("disconnect request failed", zap.Error(err))
		return
	}
	s.metrics.RecordDisconnect()
	s.metrics.SetConnected(false)
}

// handleKillswitch toggles the firewall. The state flag only changes when the
// backend call succeeds, so it always reflects the rules actually in place.
func (s *ControlServer) handleKillswitch(enable bool) {
	s.state.Lock()
	defer s.state.Unlock()

	if enable {
		active := s.state.Active
		if active == nil {
			s.logger.Error("cannot enable killswitch without an active connection")
			return
		}
		if err := s.firewall.Enable(active.Protocol, active.Server); err != nil {
			s.logger.Error("failed to enable killswitch", zap.Error(err))
			return
		}
		s.state.Killswitch.Enabled = true
		s.metrics.RecordKillswitchToggle(true)
		return
	}

	if err := s.firewall.Disable(); err != nil {
		s.logger.Error("failed to disable killswitch", zap.Error(err))
		return
	}
	s.state.Killswitch.Enabled = false
	s.metrics.RecordKillswitchToggle(false)
}

// RegisterControlServer hooks the server into the application lifecycle.
func RegisterControlServer(lc fx.Lifecycle, server *ControlServer) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := server.Listen(); err != nil {
				return err
			}
			go server.Serve()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Close()
		},
	})
}
