package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/tourism-service/internal/config"
	"github.com/spec-kit/tourism-service/internal/repository"
)

// Database owns the document store the service runs on. With a DSN it is the JSONB
// documents table behind a pgx pool; without one it is an in-memory store.
type Database struct {
	pool  *pgxpool.Pool
	store repository.DocumentStore
}

// OpenDatabase connects, applies migrations when enabled and selects the store.
func OpenDatabase(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Database, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; documents are kept in memory and lost on restart")
		return &Database{store: repository.NewMemoryDocumentStore()}, nil
	}

	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logger.Info("connected to postgres",
		zap.Int32("max_conns", pool.Config().MaxConns),
		zap.Int("tx_max_attempts", cfg.TxMaxAttempts))

	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pool, cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &Database{
		pool:  pool,
		store: repository.NewPostgresDocumentStore(pool, cfg.TxMaxAttempts, logger.Named("documents")),
	}, nil
}

// NewMemoryDatabase wraps an in-memory store, for tests and local runs.
func NewMemoryDatabase() *Database {
	return &Database{store: repository.NewMemoryDocumentStore()}
}

// Documents returns the selected document store.
func (d *Database) Documents() repository.DocumentStore {
	return d.store
}

// Durable reports whether documents survive a restart.
func (d *Database) Durable() bool {
	return d != nil && d.pool != nil
}

// Close releases pool resources.
func (d *Database) Close() {
	if d != nil && d.pool != nil {
		d.pool.Close()
	}
}

// poolConfig applies the pool sizing knobs on top of the DSN.
func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	return poolCfg, nil
}
