package core

import (
	"context"
	"time"
)

// QueryEvent contains information about an executed query.
// This is passed to QueryHook callbacks for logging, metrics, or tracing.
type QueryEvent struct {
	// SQL is the executed SQL query string
	SQL string
	// Args are the bound query parameters
	Args []interface{}
	// Duration is how long the query took to execute
	Duration time.Duration
	// RowsAffected is the number of rows affected or scanned
	RowsAffected int64
	// Error is any error that occurred during query execution (nil on success)
	Error error
	// Operation is the SQL operation type (SELECT, INSERT, UPDATE, DELETE, MERGE, UNKNOWN)
	Operation string
}

// QueryHook is a callback function invoked after each query execution.
// Use this for logging, metrics, distributed tracing, or debugging.
//
// Example:
//
//	db, _ := sqlplate.Open("postgres", dsn,
//	    sqlplate.WithQueryHook(func(ctx context.Context, e sqlplate.QueryEvent) {
//	        slog.Info("query", "sql", e.SQL, "duration", e.Duration, "err", e.Error)
//	    }))
type QueryHook func(ctx context.Context, event QueryEvent)

// invokeHook calls the query hook if set.
func (db *DB) invokeHook(ctx context.Context, event QueryEvent) {
	if db.queryHook != nil {
		db.queryHook(ctx, event)
	}
}
