// Package pgconn is the external collaborator that obtains jsonb byte
// buffers from a running PostgreSQL server. It is explicitly outside the
// decoder's scope (spec §1: "the decoder takes bytes in and returns a
// value out; it does not speak any wire protocol") and the jsonb package
// never imports it.
//
// Adapted from the teacher's client.Pool: that pool hand-rolled a
// connection producer and idle-connection slice because raw MySQL
// connections aren't pooled for you. Here database/sql (via sqlx) already
// pools connections, so the adaptation keeps the parts of Pool that are
// still useful on top of that — functional options, a threaded *slog.Logger,
// a periodic health check, and a stats snapshot — and drops the
// producer/idle-slice machinery that database/sql now owns.
package pgconn

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/pingcap/errors"
)

// Stats is a point-in-time snapshot of the underlying *sql.DB pool,
// passed through from database/sql.DBStats the way Pool.GetStats exposed
// its own internal counters.
type Stats struct {
	OpenConnections int
	InUse           int
	Idle            int
	WaitCount       int64
}

// Collector runs the "SELECT $1::jsonb::bytea" round trip described in
// spec §1 against a live Postgres connection and returns the resulting
// bytes for the caller to pass to jsonb.Decode.
type Collector struct {
	db     *sqlx.DB
	logger *slog.Logger

	healthTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Collector, mirroring the teacher's PoolOption
// functional-options pattern.
type Option func(*collectorOptions)

type collectorOptions struct {
	logger         *slog.Logger
	maxOpenConns   int
	maxIdleConns   int
	connMaxIdle    time.Duration
	healthInterval time.Duration
}

func defaultOptions() collectorOptions {
	return collectorOptions{
		logger:         slog.Default(),
		maxOpenConns:   10,
		maxIdleConns:   2,
		connMaxIdle:    30 * time.Second,
		healthInterval: 5 * time.Second,
	}
}

// WithLogger sets the *slog.Logger used for connection diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *collectorOptions) { o.logger = logger }
}

// WithPoolLimits sets the max-open/max-idle connection counts, passed
// straight through to database/sql.
func WithPoolLimits(maxOpen, maxIdle int) Option {
	return func(o *collectorOptions) {
		o.maxOpenConns = maxOpen
		o.maxIdleConns = maxIdle
	}
}

// WithHealthCheckInterval sets how often the Collector pings its
// connection in the background.
func WithHealthCheckInterval(d time.Duration) Option {
	return func(o *collectorOptions) { o.healthInterval = d }
}

// NewCollector opens a connection to dsn (a standard Postgres DSN) and
// starts a background health-check loop.
func NewCollector(dsn string, opts ...Option) (*Collector, error) {
	po := defaultOptions()
	for _, o := range opts {
		o(&po)
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, errors.Annotatef(err, "pgconn: connect")
	}
	db.SetMaxOpenConns(po.maxOpenConns)
	db.SetMaxIdleConns(po.maxIdleConns)
	db.SetConnMaxIdleTime(po.connMaxIdle)

	c := &Collector{
		db:            db,
		logger:        po.logger,
		healthTimeout: po.healthInterval,
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.wg.Add(1)
	go c.healthCheckLoop(po.healthInterval)

	return c, nil
}

func (c *Collector) healthCheckLoop(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, interval)
			if err := c.db.PingContext(ctx); err != nil {
				c.logger.Error("pgconn: health check ping failed", slog.Any("error", err))
			}
			cancel()
		}
	}
}

// Stats returns a snapshot of the connection pool.
func (c *Collector) Stats() Stats {
	s := c.db.Stats()
	return Stats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		WaitCount:       s.WaitCount,
	}
}

// FetchJSONBBytea runs `SELECT $1::jsonb::bytea` and returns the raw
// varlena payload jsonb.Decode expects. Each call tags its query text with
// a fresh UUID inside an SQL comment; no named prepared statement is created.
func (c *Collector) FetchJSONBBytea(ctx context.Context, jsonText string) ([]byte, error) {
	stmtName := "pgconn_" + uuid.NewString()
	var payload []byte
	err := c.db.GetContext(ctx, &payload, `SELECT $1::jsonb::bytea /* `+stmtName+` */`, jsonText)
	if err != nil {
		return nil, errors.Annotatef(err, "pgconn: fetch jsonb bytea")
	}
	return payload, nil
}

// FetchJSONBByteaFromColumn runs `SELECT <column>::bytea FROM <table>
// WHERE <keyColumn> = $1`, for retrieving the on-disk bytes of an
// existing jsonb column rather than a literal.
func (c *Collector) FetchJSONBByteaFromColumn(ctx context.Context, query string, args ...interface{}) ([]byte, error) {
	var payload []byte
	if err := c.db.GetContext(ctx, &payload, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, errors.Annotatef(err, "pgconn: no row for query")
		}
		return nil, errors.Annotatef(err, "pgconn: fetch jsonb bytea from column")
	}
	return payload, nil
}

// Close stops the health-check loop and closes the underlying pool.
func (c *Collector) Close() error {
	c.cancel()
	c.wg.Wait()
	return c.db.Close()
}
