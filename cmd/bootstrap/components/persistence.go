package components

import (
	"giveflow/internal/infra/readstore"
	"giveflow/internal/infra/uow"
	"giveflow/internal/usecase/queries"
	"giveflow/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	readstoreModule,
	uowModule,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		// Item
		fx.Annotate(
			readstore.NewItemReadStore,
			fx.As(new(queries.ItemAvailabilitySource)),
		),
		// Busy intervals
		fx.Annotate(
			readstore.NewBusyReadStore,
			fx.As(new(queries.BusyIntervalSource)),
		),
		// Request
		fx.Annotate(
			readstore.NewRequestReadStore,
			fx.As(new(queries.RequestReadStore)),
		),
		// Transaction
		fx.Annotate(
			readstore.NewTransactionReadStore,
			fx.As(new(queries.TransactionReadStore)),
		),
	),
)

var uowModule = fx.Module("persistence/uow",
	fx.Provide(
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
	),
)
