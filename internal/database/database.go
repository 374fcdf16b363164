package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"charla/server/internal/apperr"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Options configures the storage pool
type Options struct {
	URL            string
	MaxConns       int32
	QueueLimit     int64
	AcquireTimeout time.Duration
}

// DB is a bounded pool of storage connections. Callers queue for a connection
// when the pool is exhausted; once the queue is full they fail fast with
// apperr.ErrResourceExhausted.
type DB struct {
	Pool           *pgxpool.Pool
	gate           *Gate
	acquireTimeout time.Duration
}

// Connect opens the pool, checks connectivity and applies the schema.
func Connect(ctx context.Context, opts Options) (*DB, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Printf("Database connected (max conns %d, queue limit %d)", poolConfig.MaxConns, opts.QueueLimit)

	return New(pool, int64(poolConfig.MaxConns)+opts.QueueLimit, opts.AcquireTimeout), nil
}

// New wraps an existing pool. capacity bounds the number of operations that
// may hold or wait for a connection at once.
func New(pool *pgxpool.Pool, capacity int64, acquireTimeout time.Duration) *DB {
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}
	return &DB{
		Pool:           pool,
		gate:           NewGate(capacity),
		acquireTimeout: acquireTimeout,
	}
}

// Acquire takes a connection from the pool on behalf of one store operation.
// The returned release func must be called exactly once.
func (db *DB) Acquire(ctx context.Context) (*pgxpool.Conn, func(), error) {
	leave, err := db.gate.Enter()
	if err != nil {
		return nil, nil, err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.Pool.Acquire(acquireCtx)
	if err != nil {
		leave()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, nil, fmt.Errorf("%w: timed out waiting for a database connection", apperr.ErrResourceExhausted)
		}
		return nil, nil, apperr.Persistence("acquire connection", err)
	}

	return conn, func() {
		conn.Release()
		leave()
	}, nil
}

// Close closes the pool
func (db *DB) Close() {
	if db != nil && db.Pool != nil {
		db.Pool.Close()
	}
}
