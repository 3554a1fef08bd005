// Package postgres opens the run-ledger database. The process writes one
// report per invocation, so the pool stays small and exposes only the knobs
// a short-lived CLI can meaningfully tune.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/wqeqwqeq/drctl/internal/platform/env"
)

type Config struct {
	URL         string
	PingTimeout time.Duration
	MaxConns    int
}

func ConfigFromEnv() (Config, error) {
	pingTimeout, err := env.Duration("DATABASE_PING_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}
	maxConns, err := env.Int("DATABASE_MAX_CONNS", 2)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		URL:         env.String("DATABASE_URL", ""),
		PingTimeout: pingTimeout,
		MaxConns:    maxConns,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.PingTimeout <= 0 {
		return errors.New("DATABASE_PING_TIMEOUT must be positive")
	}
	if c.MaxConns < 1 {
		return errors.New("DATABASE_MAX_CONNS must be >= 1")
	}
	return nil
}

func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}
