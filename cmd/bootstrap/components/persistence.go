package components

import (
	"log/slog"

	"parking-hold-engine/internal/infra/memstore"
	"parking-hold-engine/internal/infra/uow"
	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewUnitOfWork,
	),
)

// NewUnitOfWork picks the storage backend. Both honor the same transactional contract, so nothing
// above this line knows which one is running.
func NewUnitOfWork(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) shared.UnitOfWork {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage; state is lost on restart")
		return memstore.NewUoW(memstore.New(logger))
	}
	return uow.NewPostgresUoW(pool, logger)
}
