package core

import (
	"context"
	"time"

	"github.com/campushire/placementd/internal/blob"
	"github.com/campushire/placementd/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service provides the placement business logic: catalog management,
// per-company application tables, lifecycle transitions, and the
// export/import bridge.
type Service struct {
	pool  *pgxpool.Pool
	blobs blob.Store

	allowSharedTable bool
	opTimeout        time.Duration
	exportTimeout    time.Duration
}

// NewService creates a Service backed by the given pool and blob store.
func NewService(pool *pgxpool.Pool, blobs blob.Store, cfg *config.Config) *Service {
	return &Service{
		pool:             pool,
		blobs:            blobs,
		allowSharedTable: cfg.Placement.AllowSharedTable,
		opTimeout:        cfg.Placement.OpTimeout,
		exportTimeout:    cfg.Placement.ExportTimeout,
	}
}

// Ping verifies database connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// opContext bounds a single catalog/application operation.
func (s *Service) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// exportContext bounds an export/import operation.
func (s *Service) exportContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.exportTimeout)
}
