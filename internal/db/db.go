package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crucial707/board/internal/config"
)

// Querier is the subset of database/sql needed by repositories. It is
// satisfied by *sql.DB, *sql.Conn and *Session, so repositories never
// care whether they run against the pool, a dedicated connection or a
// request-scoped session.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Manager owns the connection pool and the backend chosen at startup.
type Manager struct {
	pool    *sql.DB
	backend Backend
}

// Open selects the backend from cfg (DATABASE_URL set means postgres,
// otherwise the SQLite file at cfg.DBPath), opens the pool and verifies
// connectivity.
func Open(cfg config.Config) (*Manager, error) {
	var backend Backend
	if cfg.DatabaseURL != "" {
		backend = Postgres(cfg.DatabaseURL)
	} else {
		backend = SQLite(cfg.DBPath)
	}
	return OpenBackend(backend, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
}

// OpenBackend opens the pool for an explicit backend.
func OpenBackend(backend Backend, maxOpen, maxIdle int) (*Manager, error) {
	pool, err := sql.Open(backend.driverName(), backend.dsn())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend.Name(), err)
	}
	if maxOpen > 0 {
		pool.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		pool.SetMaxIdleConns(maxIdle)
	}
	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", backend.Name(), err)
	}
	return NewManager(pool, backend), nil
}

// NewManager wraps an already-open pool with a backend. Tests use this
// to supply a mock pool.
func NewManager(pool *sql.DB, backend Backend) *Manager {
	return &Manager{pool: pool, backend: backend}
}

// InitSchema creates the posts table if it does not exist. Safe to call
// more than once.
func (m *Manager) InitSchema(ctx context.Context) error {
	if _, err := m.pool.ExecContext(ctx, m.backend.schema()); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Backend returns the backend chosen at startup.
func (m *Manager) Backend() Backend { return m.backend }

// Pool exposes the underlying pool for out-of-band callers (the
// maintenance CLI); request handlers should use Session instead.
func (m *Manager) Pool() *sql.DB { return m.pool }

// Session returns a fresh request-scoped session. The caller must
// defer-close it.
func (m *Manager) Session() *Session {
	return NewSession(m.pool)
}

func (m *Manager) Close() error {
	return m.pool.Close()
}
