package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/coregx/sqlplate/internal/cache"
	"github.com/coregx/sqlplate/internal/dialects"
	"github.com/coregx/sqlplate/internal/logger"
	"github.com/coregx/sqlplate/internal/schema"
	"github.com/coregx/sqlplate/internal/tracer"
)

// DB pairs a database/sql handle with the dialect its driver speaks and the
// machinery templates need at execution time: a prepared-statement cache, a
// prepared-template cache, structured logging with parameter masking, tracing,
// and an optional per-query hook.
type DB struct {
	sqlDB      *sql.DB
	driverName string
	dialect    dialects.Dialect

	stmtCache *cache.LRU[*sql.Stmt]
	tmplCache *cache.LRU[*Template]

	logger    logger.Logger
	sanitizer *logger.Sanitizer
	tracer    tracer.Tracer
	queryHook QueryHook

	healthInterval time.Duration
	health         *healthChecker
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithLogger sets the structured logger used for query logging.
// The provided logger must not be nil.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithTracer sets the tracer used to span query execution.
// The provided tracer must not be nil.
func WithTracer(t tracer.Tracer) Option {
	return func(db *DB) {
		db.tracer = t
	}
}

// WithQueryHook sets a callback invoked after every executed query.
func WithQueryHook(hook QueryHook) Option {
	return func(db *DB) {
		db.queryHook = hook
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) {
		db.stmtCache.Clear()
		db.stmtCache = newStmtCache(capacity)
	}
}

// WithTemplateCacheCapacity sets the prepared template cache capacity.
func WithTemplateCacheCapacity(capacity int) Option {
	return func(db *DB) {
		db.tmplCache = cache.New[*Template](capacity, nil)
	}
}

// WithSanitizerFields sets the field names whose parameter values are masked
// in query logs, replacing the default sensitive-field list.
func WithSanitizerFields(fields ...string) Option {
	return func(db *DB) {
		db.sanitizer = logger.NewSanitizer(fields)
	}
}

// WithHealthCheck enables periodic background pings at the given interval.
func WithHealthCheck(interval time.Duration) Option {
	return func(db *DB) {
		db.healthInterval = interval
	}
}

// newStmtCache builds a statement cache that closes statements on eviction.
func newStmtCache(capacity int) *cache.LRU[*sql.Stmt] {
	return cache.New[*sql.Stmt](capacity, func(stmt *sql.Stmt) {
		_ = stmt.Close()
	})
}

// Open opens a database by driver name and DSN and wraps it. The driver name
// also selects the dialect: "sqlite3", "sqlserver", "mysql", "postgres",
// "oracle", "db2" and their common aliases are recognized; anything else
// panics.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return WrapDB(sqlDB, driverName, opts...), nil
}

// WrapDB wraps an already opened sql.DB handle. Use this when the connection
// is managed elsewhere; Close still closes the underlying handle.
func WrapDB(sqlDB *sql.DB, driverName string, opts ...Option) *DB {
	db := &DB{
		sqlDB:      sqlDB,
		driverName: driverName,
		dialect:    dialects.GetDialect(driverName),
		stmtCache:  newStmtCache(cache.DefaultCapacity),
		tmplCache:  cache.New[*Template](cache.DefaultCapacity, nil),
		logger:     &logger.NoopLogger{},
		sanitizer:  logger.NewSanitizer(nil),
		tracer:     &tracer.NoopTracer{},
	}

	for _, opt := range opts {
		opt(db)
	}

	// Health checking starts after all options so it sees the final logger.
	if db.healthInterval > 0 {
		db.health = newHealthChecker(db.sqlDB, db.logger, db.healthInterval)
		db.health.start()
	}

	return db
}

// Close stops background health checking, closes all cached prepared
// statements, and closes the underlying database handle.
func (db *DB) Close() error {
	if db.health != nil {
		db.health.shutdown()
	}
	db.stmtCache.Clear()
	db.tmplCache.Clear()
	return db.sqlDB.Close()
}

// Dialect returns the dialect selected by the driver name.
func (db *DB) Dialect() dialects.Dialect {
	return db.dialect
}

// DriverName returns the driver name the handle was opened with.
func (db *DB) DriverName() string {
	return db.driverName
}

// Unwrap returns the underlying sql.DB handle.
func (db *DB) Unwrap() *sql.DB {
	return db.sqlDB
}

// Health reports the most recent background health check result. The zero
// status is returned when health checking is not enabled.
func (db *DB) Health() HealthStatus {
	if db.health == nil {
		return HealthStatus{}
	}
	return db.health.status()
}

// ContextFor builds a placeholder context for a model struct: columns come
// from schema reflection, the table name from the TableModel override or the
// pluralized type name. Options may override either.
func (db *DB) ContextFor(model interface{}, opts ...ContextOption) (*Context, error) {
	cols, err := schema.Columns(model)
	if err != nil {
		return nil, err
	}
	return NewContext(db.dialect, schema.TableName(model), cols, opts...), nil
}

// Prepare expands a template against ctx, consulting the template cache
// first. Distinct contexts never collide: the cache key includes the context
// fingerprint. The returned template is shared; treat it as read-only.
func (db *DB) Prepare(template string, ctx *Context) (*Template, error) {
	key := ctx.fingerprint + "\x00" + template
	if t, ok := db.tmplCache.Get(key); ok {
		return t, nil
	}

	t, err := Prepare(template, ctx)
	if err != nil {
		return nil, err
	}
	db.tmplCache.Set(key, t)
	return t, nil
}

// CacheStats returns hit/miss statistics for the statement and template caches.
func (db *DB) CacheStats() (stmts, templates cache.Stats) {
	return db.stmtCache.Stats(), db.tmplCache.Stats()
}

// ExecContext executes a raw SQL statement, bypassing the template layer.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.sqlDB.ExecContext(ctx, query, args...)
}

// QueryContext executes a raw SQL query and returns rows, bypassing the
// template layer.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a raw SQL query expected to return at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.sqlDB.QueryRowContext(ctx, query, args...)
}
