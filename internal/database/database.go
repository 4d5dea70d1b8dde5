// Package database owns the connection to PostgreSQL.
//
// It handles:
//   - building a DSN from config
//   - creating a bounded pgx connection pool (pgxpool)
//   - wiring query tracing/logging (pgx tracelog, optional New Relic nrpgx5)
//   - scoped acquisition: one pooled connection per logical operation, held
//     for the duration of a transaction and always released
//   - the idempotent schema initializer for the employees table
package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/Prashantkhobragade/CRUD-ops/internal/config"
	loggerConfig "github.com/Prashantkhobragade/CRUD-ops/internal/logger"
	"github.com/Prashantkhobragade/CRUD-ops/internal/sqlerr"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Pool is the part of *pgxpool.Pool this package relies on.
//
// Begin acquires a connection from the pool and holds it until the returned
// transaction is committed or rolled back.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Database wraps the connection pool and a logger.
// It is the connection provider passed to repositories.
type Database struct {
	Pool Pool
	log  *zerolog.Logger

	queryTimeout       time.Duration
	slowQueryThreshold time.Duration
	employee           config.EmployeeConfig
}

// multiTracer chains several pgx query tracers.
//
// pgx supports a single Tracer in ConnConfig; this adapter runs the New Relic
// tracer and the local SQL logger together.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}

// DatabasePingTimeout is how long New waits for the first ping before
// considering the database unreachable.
const DatabasePingTimeout = 10 * time.Second

// DSN builds the postgres URL for cfg. The password is URL-escaped so
// characters like ':' and '@' do not break the URL.
func DSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		hostPort,
		url.PathEscape(cfg.Name),
		cfg.SSLMode,
	)
}

// PoolConfig parses the DSN and applies the configured pool bounds.
func PoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = cfg.MaxConns
	pgxPoolConfig.MinConns = cfg.MinConns
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleTime) * time.Second
	pgxPoolConfig.ConnConfig.ConnectTimeout = cfg.QueryTimeout

	return pgxPoolConfig, nil
}

// New creates a PostgreSQL connection pool with instrumentation.
//
// Behavior:
//   - Build DSN and pool config (bounded by database.max_conns)
//   - Attach the New Relic tracer if available
//   - In local env: attach the SQL tracelogger (chained with New Relic if both exist)
//   - Create the pool, ping it, and return Database
//
// An unreachable store or rejected credentials yield a connection error.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := PoolConfig(cfg.Database)
	if err != nil {
		return nil, err
	}

	var tracers []pgx.QueryTracer

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	// SQL logging is very noisy, which is why it's only on in local.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)

		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		pgxPoolConfig.ConnConfig.Tracer = tracers[0]
	default:
		pgxPoolConfig.ConnConfig.Tracer = &multiTracer{tracers: tracers}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxPoolConfig)
	if err != nil {
		return nil, sqlerr.Connection("database.connect", err)
	}

	database := NewWithPool(pool, logger, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, DatabasePingTimeout)
	defer cancel()
	if err = pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, sqlerr.Connection("database.ping", err)
	}

	logger.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Name).
		Int32("max_conns", cfg.Database.MaxConns).
		Msg("connected to the database")

	return database, nil
}

// NewWithPool wraps an existing pool. New uses it after connecting; tests use
// it with a mock pool.
func NewWithPool(pool Pool, logger *zerolog.Logger, cfg *config.Config) *Database {
	var slow time.Duration
	if cfg.Observability != nil {
		slow = cfg.Observability.Logging.SlowQueryThreshold
	}

	return &Database{
		Pool:               pool,
		log:                logger,
		queryTimeout:       cfg.Database.QueryTimeout,
		slowQueryThreshold: slow,
		employee:           cfg.Employee,
	}
}

// rollbackTimeout bounds the deferred rollback in WithTx.
const rollbackTimeout = 5 * time.Second

// TxFunc runs inside a transaction owned by WithTx.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// WithTx is the scoped acquisition primitive.
//
// It attaches the configured deadline, begins a transaction (acquiring one
// pooled connection), runs fn, and commits. The connection goes back to the
// pool on every exit path: the deferred rollback releases it after a failure
// and is a no-op after a successful commit.
//
// Errors come back classified as *sqlerr.OpError.
func (db *Database) WithTx(ctx context.Context, op string, fn TxFunc) error {
	start := time.Now()

	if db.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.queryTimeout)
		defer cancel()
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return sqlerr.Connection(op, err)
	}
	defer func() {
		// The rollback outlives ctx but gets its own deadline. After Commit
		// it returns pgx.ErrTxClosed; nothing to report.
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()
		_ = tx.Rollback(rbCtx)
	}()

	if err := fn(ctx, tx); err != nil {
		return classify(ctx, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return classify(ctx, op, err)
	}

	if elapsed := time.Since(start); db.slowQueryThreshold > 0 && elapsed > db.slowQueryThreshold {
		db.log.Warn().
			Str("op", op).
			Dur("duration", elapsed).
			Dur("threshold", db.slowQueryThreshold).
			Msg("slow database operation")
	}

	return nil
}

// classify is sqlerr.Classify, except that a failure after the deadline has
// expired is reported as a timeout whatever the driver returned.
func classify(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) && !errors.Is(err, ctxErr) && sqlerr.KindOf(err) == 0 {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return sqlerr.Classify(op, err)
}

// Ping checks that a connection can be acquired and used.
func (db *Database) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return sqlerr.Connection("database.ping", err)
	}
	return nil
}

// Close closes the connection pool. pgxpool.Pool.Close is idempotent.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
