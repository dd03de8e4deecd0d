package bootstrap

import (
	"giveflow/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.HandoffConfig { return cfg.Handoff },
		func(cfg config.Config) config.MediaConfig { return cfg.Media },
	),
)
