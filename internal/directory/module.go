package directory

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) (Directory, error) { return c.Logicals() }),
)
