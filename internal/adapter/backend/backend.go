// Package backend selects and opens the configured repository implementation.
package backend

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"bloodbank/internal/adapter/docstore"
	"bloodbank/internal/adapter/repo"
	"bloodbank/internal/domain"
	"bloodbank/internal/infra"
)

// Store is a repository that can also seed its reference data.
type Store interface {
	domain.Repository
	domain.ReferenceLoader
}

// Open connects to the backend named by cfg.StoreBackend, prepares its
// schema and loads the default branches and staff.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.StoreBackend {
	case infra.BackendPostgres:
		store, err = openPostgres(ctx, cfg, logger)
	case infra.BackendDocstore:
		store, err = docstore.Open(cfg.DocstorePath, infra.Component(logger, "docstore"))
	default:
		err = fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	if err := domain.LoadDefaultReference(ctx, store); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load reference data: %w", err)
	}
	logger.Info().Str("backend", cfg.StoreBackend).Msg("store ready")
	return store, nil
}

func openPostgres(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (Store, error) {
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, infra.Component(logger, "sql"))
	r := repo.NewRepository(runner, infra.Component(logger, "repo"))
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	infra.LogPoolStats(logger, pool)
	return &pgStore{RepositoryPG: r, pool: pool}, nil
}

// pgStore owns the pool so closing the store releases connections.
type pgStore struct {
	*repo.RepositoryPG
	pool *pgxpool.Pool
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}
