// Package db opens the Postgres connection pool shared by the stores.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/carbnb/apiserver/config"
	_ "github.com/lib/pq"
)

const (
	driverName  = "postgres"
	pingTimeout = 5 * time.Second

	connMaxIdleTime = 2 * time.Minute
	connMaxLifetime = 30 * time.Minute
	maxIdleConns    = 5
	maxOpenConns    = 25
)

// URL builds the postgres connection string for the given config.
// The migrate command reuses it so both paths hit the same database.
func URL(cfg config.DatabaseConfig) string {
	u := &url.URL{
		Scheme: driverName,
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		User:   url.UserPassword(cfg.User, cfg.Password),
		Path:   cfg.DBName,
	}

	sslmode := "disable"
	if cfg.UseSSL {
		sslmode = "require"
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()

	return u.String()
}

// Open connects to Postgres, applies the pool limits, and verifies the
// connection with a bounded ping.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	pool, err := sql.Open(driverName, URL(cfg.Database))
	if err != nil {
		return nil, err
	}

	pool.SetConnMaxIdleTime(connMaxIdleTime)
	pool.SetConnMaxLifetime(connMaxLifetime)
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetMaxOpenConns(maxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return pool, nil
}
