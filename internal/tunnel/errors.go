package tunnel

import "errors"

var (
	// ErrCredentialsNotConfigured means the config has no credentials path.
	ErrCredentialsNotConfigured = errors.New("credentials path configuration option not set")
	// ErrCredentialsNotFound means the configured credentials file is absent.
	ErrCredentialsNotFound = errors.New("credentials file does not exist")
	// ErrClientNotFound means the tunnel binary is not on PATH.
	ErrClientNotFound = errors.New("openvpn was not found, check your PATH")
	// ErrReadinessTimeout means the tunnel subprocess never produced its pid
	// file within the readiness deadline.
	ErrReadinessTimeout = errors.New("timed out waiting for tunnel pid file")
)
