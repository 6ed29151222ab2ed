package components

import (
	"context"
	"log/slog"

	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/usecase/commands"
	"parking-hold-engine/internal/worker/expiry"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(c commands.HoldCommands, cfg config.Config, logger *slog.Logger) *expiry.Sweeper {
			return expiry.NewSweeper(c, cfg.Sweeper, logger)
		},
	),
	fx.Invoke(
		seedSlots,
		startSweeper,
	),
)

func seedSlots(lc fx.Lifecycle, cfg config.Config, slots commands.SlotCommands) {
	if cfg.Storage.SeedSlots <= 0 {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := slots.SeedSlots(ctx, cfg.Storage.SeedZone, cfg.Storage.SeedSlots)
			return err
		},
	})
}

func startSweeper(lc fx.Lifecycle, cfg config.Config, sweeper *expiry.Sweeper, logger *slog.Logger) {
	if !cfg.Sweeper.Enabled {
		logger.Info("expiry sweeper disabled; relying on lazy expiry")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return sweeper.Stop(ctx)
		},
	})
}
