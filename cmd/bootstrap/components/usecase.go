package components

import (
	"log/slog"

	"parking-hold-engine/internal/domain/hold"
	"parking-hold-engine/internal/pkg/clock"
	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/internal/usecase/queries"
	"parking-hold-engine/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) commands.LedgerPolicy {
		return commands.NewLedgerPolicy(cfg.Ledger)
	},
	func(cfg config.Config) hold.OverstayPolicy {
		return hold.OverstayPolicy{
			Bound:       cfg.Ledger.OverstayBound,
			GracePeriod: cfg.Ledger.OverstayGracePeriod,
		}
	},
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewHoldUseCase,
		commands.NewSlotUseCase,
		commands.NewOccupancyUseCase,
		// Read paths persist lazily detected expiries through the ledger
		func(c commands.HoldCommands) queries.Expirer {
			return c
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewHoldQueries,
		queries.NewSlotQueries,
		queries.NewEventQueries,
		queries.NewOverstayQueries,
		func(uow shared.UnitOfWork, expirer queries.Expirer, clk clock.Clock, cfg config.Config, logger *slog.Logger) queries.AvailabilityQueries {
			return queries.NewAvailabilityQueries(uow, expirer, clk, cfg.Ledger.OccupancyThreshold, logger)
		},
	),
)
