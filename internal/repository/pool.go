package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/quentin/tickvault/internal/config"
)

// Registry owns the job-store connection pools, keyed by store path.
// It is created by the process lifecycle and injected into the components
// that need a store handle; nothing reaches for it as ambient global
// state. Opening the same path twice returns the same pool.
type Registry struct {
	mu    sync.Mutex
	pools map[string]*gorm.DB
}

// NewRegistry creates an empty pool registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*gorm.DB)}
}

// Open returns the pool for the configured store path, creating and
// configuring it on first use.
// Parameters:
//   - cfg: database configuration; the DSN string is the registry key.
// Returns:
//   - *gorm.DB: shared pool for that store path.
//   - error: non-nil if a new pool cannot be initialized.
func (r *Registry) Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	key := cfg.Driver + ":" + cfg.DSNString()

	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.pools[key]; ok {
		return db, nil
	}

	db, err := InitDB(cfg)
	if err != nil {
		return nil, err
	}
	r.pools[key] = db
	return db, nil
}

// WithConn runs fn with exclusive use of a single physical connection
// checked out of db's pool. The connection is returned to the pool when
// fn returns, when fn fails, and when fn panics; it is never leaked and
// never left borrowed. Overlapping callers are serialized by the pool's
// checkout, so two logically-concurrent operations can never interleave
// on one connection.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - db: pool to borrow from.
//   - fn: function run with the borrowed connection.
// Returns:
//   - error: fn's error, or the checkout error.
func (r *Registry) WithConn(ctx context.Context, db *gorm.DB, fn func(conn *sql.Conn) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to borrow connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

// Close releases every pool in the registry. Safe to call once at
// process shutdown.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for key, db := range r.pools {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close pool %s: %w", key, err)
		}
		delete(r.pools, key)
	}
	return firstErr
}
