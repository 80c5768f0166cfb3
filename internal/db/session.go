package db

import (
	"context"
	"database/sql"
	"errors"
)

// ErrSessionClosed is returned when a query runs on a closed session.
var ErrSessionClosed = errors.New("db: session is closed")

// Session is a storage handle scoped to a single request. It acquires a
// dedicated connection from the pool lazily, on the first query, and
// releases it on Close. Close is idempotent: closing twice, or closing
// a session that never ran a query, is a no-op.
//
// A session is not safe for concurrent use; each request gets its own.
type Session struct {
	pool   *sql.DB
	conn   *sql.Conn
	closed bool
}

// NewSession wraps pool in an unopened session.
func NewSession(pool *sql.DB) *Session {
	return &Session{pool: pool}
}

func (s *Session) acquire(ctx context.Context) (*sql.Conn, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.conn == nil {
		conn, err := s.pool.Conn(ctx)
		if err != nil {
			return nil, err
		}
		s.conn = conn
	}
	return s.conn, nil
}

func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn.ExecContext(ctx, query, args...)
}

func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn.QueryContext(ctx, query, args...)
}

func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	conn, err := s.acquire(ctx)
	if err != nil {
		// *sql.Row carries its error internally; run the query on an
		// already-canceled context so Scan reports the failure.
		canceled, cancel := context.WithCancel(context.Background())
		cancel()
		return s.pool.QueryRowContext(canceled, query, args...)
	}
	return conn.QueryRowContext(ctx, query, args...)
}

// Close returns the connection to the pool, if one was acquired.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
