// Package db owns the SQLite connection pool and the schema.
//
// Connections come from a fixed-size zombiezen sqlitex.Pool. Callers Take a
// connection, run their statements and Put it back; a connection must not be
// shared between goroutines.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config holds the parameters for opening a pool.
type Config struct {
	// Path is the database file. The parent directory must exist.
	Path string

	// PoolSize defaults to 4.
	PoolSize int

	Logger *slog.Logger
}

// Pool is a fixed-size pool of SQLite connections with the schema applied.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Every connection gets the standard pragmas and the
// schema migration on first use.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("db: opening %s: %w", cfg.Path, err)
	}

	p := &Pool{inner: inner, logger: logger, path: cfg.Path}

	// Run the migration eagerly so schema errors surface at startup.
	conn, err := p.Take(context.Background())
	if err != nil {
		inner.Close()
		return nil, err
	}
	version := SchemaVersion(conn)
	p.Put(conn)

	logger.Info("database opened", "path", cfg.Path, "pool_size", poolSize, "schema_version", version)
	return p, nil
}

// Take borrows a connection; the caller must Put it back.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("db: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Safe to call with nil.
func (p *Pool) Put(conn *sqlite.Conn) {
	if conn != nil {
		p.inner.Put(conn)
	}
}

// Close closes all connections, blocking until borrowed ones are returned.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("database close error", "path", p.path, "error", err)
		return fmt.Errorf("db: closing %s: %w", p.path, err)
	}
	p.logger.Info("database closed", "path", p.path)
	return nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("db: %s: %w", pragma, err)
		}
	}
	return Migrate(conn)
}
