package tunnel

import (
	"go.uber.org/fx"

	"tunneld/internal/metrics"
)

var Module = fx.Options(
	fx.Provide(
		NewSupervisor,
		fx.Annotate(NewOpenVPNLauncher, fx.As(new(Launcher))),
		func(c *metrics.Collector) Metrics { return c },
	),
)
