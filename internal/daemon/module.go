package daemon

import (
	"go.uber.org/fx"
)

// Module wires the daemon together. Invoke order matters twice over: the
// startup sequence must finish before the control socket starts accepting,
// and on stop the socket must close before the tunnel is torn down, so the
// signal handler is registered ahead of the control server.
var Module = fx.Options(
	fx.Provide(
		NewControlServer,
		NewSignalHandler,
	),
	fx.Invoke(
		RegisterBootstrap,
		RegisterSignalHandler,
		RegisterControlServer,
	),
)
