package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend-chillwalk/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPostgresDisabled is returned when no POSTGRES_URL is configured.
var ErrPostgresDisabled = errors.New("postgres disabled")

var (
	newPoolFn  = pgxpool.NewWithConfig
	pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error { return pool.Ping(ctx) }
)

func ConnectPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresURL == "" {
		return nil, ErrPostgresDisabled
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.PostgresMaxConn > 0 {
		poolCfg.MaxConns = cfg.PostgresMaxConn
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
