package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
)

type PoolOptions struct {
	DatabaseURL string
	MaxConns    int32
}

func NewPool(ctx context.Context, log *logger.Logger, opts PoolOptions, retry RetryConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = opts.MaxConns
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = constants.DBPoolMaxOpenConns
	}
	cfg.MinConns = constants.DBPoolMinOpenConns
	if cfg.MinConns > cfg.MaxConns {
		cfg.MinConns = cfg.MaxConns
	}
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	cfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": constants.ApplicationName,
	}

	var pool *pgxpool.Pool
	err = RetryWithBackoff(ctx, log, "relational store", retry, func(ctx context.Context) error {
		p, err := pgxpool.ConnectConfig(ctx, cfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infof("relational connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
	StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
	return pool, nil
}
