package config

import (
	"go.uber.org/fx"
)

// Path is the --config flag value; empty means "use the search paths".
type Path string

var Module = fx.Provide(func(path Path) (*Config, error) {
	return Load(string(path))
})
