package components

import (
	"giveflow/internal/domain/geo"
	"giveflow/internal/domain/request"
	"giveflow/internal/infra/media"
	"giveflow/internal/infra/securecode"
	"giveflow/internal/pkg/clock"
	"giveflow/internal/pkg/config"
	"giveflow/internal/usecase"
	"giveflow/internal/usecase/commands"
	"giveflow/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
	usecaseValidatorsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	request.NewFactory,
	func(cfg config.HandoffConfig) geo.Gate {
		return geo.NewGate(cfg.ProximityRadiusM)
	},
	fx.Annotate(
		securecode.NewGenerator,
		fx.As(new(commands.CodeGenerator)),
	),
	fx.Annotate(
		media.NewLocalStore,
		fx.As(new(commands.MediaStore)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewRequestCommands,
		commands.NewTransactionCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewRequestQueries,
		queries.NewTransactionQueries,
		queries.NewSlotQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
