package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coregx/sqlplate/internal/tracer"
	"github.com/coregx/sqlplate/internal/util"
)

// prepareStatement returns a prepared statement for sqlText, consulting the
// LRU statement cache first. Cached statements stay open until evicted, so
// callers must not close them.
func (db *DB) prepareStatement(ctx context.Context, sqlText string) (*sql.Stmt, error) {
	if stmt, ok := db.stmtCache.Get(sqlText); ok {
		return stmt, nil
	}

	stmt, err := db.sqlDB.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	db.stmtCache.Set(sqlText, stmt)
	return stmt, nil
}

// logPrepareError logs a statement preparation failure.
func (db *DB) logPrepareError(sqlText string, args []interface{}, err error) {
	db.logger.Error("statement preparation failed",
		"sql", sqlText,
		"params", db.sanitizer.FormatParams(db.sanitizer.MaskParams(sqlText, args)),
		"database", db.driverName,
		"error", err,
	)
}

// observe fans one execution result out to the logger, the active span, and
// the query hook.
func (db *DB) observe(ctx context.Context, span tracer.Span, sqlText string, args []interface{}, elapsed time.Duration, rows int64, err error) {
	op := tracer.DetectOperation(sqlText)

	masked := db.sanitizer.FormatParams(db.sanitizer.MaskParams(sqlText, args))
	if err != nil {
		db.logger.Error("query execution failed",
			"sql", sqlText,
			"params", masked,
			"duration_ms", elapsed.Milliseconds(),
			"database", db.driverName,
			"error", err,
		)
	} else {
		db.logger.Info("query executed",
			"sql", sqlText,
			"params", masked,
			"duration_ms", elapsed.Milliseconds(),
			"rows_affected", rows,
			"database", db.driverName,
		)
	}

	tracer.AddQueryAttributes(span, &tracer.QueryMetadata{
		SQL:          sqlText,
		Args:         args,
		Duration:     elapsed,
		RowsAffected: rows,
		Error:        err,
		Database:     db.driverName,
		Operation:    op,
	})

	db.invokeHook(ctx, QueryEvent{
		SQL:          sqlText,
		Args:         args,
		Duration:     elapsed,
		RowsAffected: rows,
		Error:        err,
		Operation:    op,
	})
}

// Exec binds the template with params and executes it as a statement
// (INSERT/UPDATE/DELETE), returning the driver result.
func (db *DB) Exec(ctx context.Context, t *Template, params Params) (sql.Result, error) {
	sqlText, args, err := t.Bind(params)
	if err != nil {
		return nil, err
	}

	ctx, span := db.tracer.StartSpan(ctx, "sqlplate.query.execute")
	defer span.End()

	start := time.Now()
	stmt, err := db.prepareStatement(ctx, sqlText)
	if err != nil {
		db.logPrepareError(sqlText, args, err)
		return nil, err
	}

	result, err := stmt.ExecContext(ctx, args...)
	elapsed := time.Since(start)

	var rowsAffected int64
	if result != nil {
		rowsAffected, _ = result.RowsAffected()
	}
	db.observe(ctx, span, sqlText, args, elapsed, rowsAffected, err)
	return result, err
}

// Query binds the template with params and executes it, returning the raw
// rows. The caller owns the returned rows and must close them.
func (db *DB) Query(ctx context.Context, t *Template, params Params) (*sql.Rows, error) {
	sqlText, args, err := t.Bind(params)
	if err != nil {
		return nil, err
	}

	ctx, span := db.tracer.StartSpan(ctx, "sqlplate.query.rows")
	defer span.End()

	start := time.Now()
	stmt, err := db.prepareStatement(ctx, sqlText)
	if err != nil {
		db.logPrepareError(sqlText, args, err)
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, args...)
	db.observe(ctx, span, sqlText, args, time.Since(start), 0, err)
	return rows, err
}

// One runs the template and scans the first result row into dest, a pointer
// to a struct or a *NullStringMap. Returns ErrNoRows when the result set is
// empty.
func (db *DB) One(ctx context.Context, t *Template, params Params, dest interface{}) error {
	sqlText, args, err := t.Bind(params)
	if err != nil {
		return err
	}

	ctx, span := db.tracer.StartSpan(ctx, "sqlplate.query.one")
	defer span.End()

	start := time.Now()
	stmt, err := db.prepareStatement(ctx, sqlText)
	if err != nil {
		db.logPrepareError(sqlText, args, err)
		return err
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		db.observe(ctx, span, sqlText, args, time.Since(start), 0, err)
		return err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		err = rows.Err()
		if err == nil {
			err = ErrNoRows
		}
		db.observe(ctx, span, sqlText, args, time.Since(start), 0, err)
		return err
	}

	if nm, ok := dest.(*NullStringMap); ok {
		err = scanMapRow(rows, nm)
	} else {
		err = scanRow(rows, dest)
	}

	var scanned int64
	if err == nil {
		scanned = 1
	}
	db.observe(ctx, span, sqlText, args, time.Since(start), scanned, err)
	return err
}

// All runs the template and scans every result row into dest, a pointer to a
// slice of structs, struct pointers, or NullStringMap. An empty result set
// leaves dest untouched and returns nil.
func (db *DB) All(ctx context.Context, t *Template, params Params, dest interface{}) error {
	sqlText, args, err := t.Bind(params)
	if err != nil {
		return err
	}

	ctx, span := db.tracer.StartSpan(ctx, "sqlplate.query.all")
	defer span.End()

	start := time.Now()
	stmt, err := db.prepareStatement(ctx, sqlText)
	if err != nil {
		db.logPrepareError(sqlText, args, err)
		return err
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		db.observe(ctx, span, sqlText, args, time.Since(start), 0, err)
		return err
	}
	defer func() { _ = rows.Close() }()

	var scanned int64
	if nms, ok := dest.(*[]NullStringMap); ok {
		scanned, err = scanMapRows(rows, nms)
	} else {
		scanned, err = scanRows(rows, dest)
	}
	db.observe(ctx, span, sqlText, args, time.Since(start), scanned, err)
	return err
}

// ExecBatch executes a fully static template once per parameter set over a
// single prepared statement and returns the total affected-row count. The
// template must have no dynamic placeholders: every row shares one statement
// text, so per-row SQL rewriting is not available here. This is also the
// supported bulk path for positional dialects, where dynamically grown tuple
// lists cannot be bound.
func (db *DB) ExecBatch(ctx context.Context, t *Template, rows []Params) (int64, error) {
	if t.HasDynamicPlaceholders() {
		return 0, fmt.Errorf("batch execution requires a fully static template")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	sqlText, _, err := t.Bind(rows[0])
	if err != nil {
		return 0, err
	}

	ctx, span := db.tracer.StartSpan(ctx, "sqlplate.query.batch")
	defer span.End()

	start := time.Now()
	stmt, err := db.prepareStatement(ctx, sqlText)
	if err != nil {
		db.logPrepareError(sqlText, nil, err)
		return 0, err
	}

	var total int64
	for i, row := range rows {
		if util.IsCanceled(ctx) {
			err := ctx.Err()
			db.observe(ctx, span, sqlText, nil, time.Since(start), total, err)
			return total, err
		}

		// The text is static, so only the bound args differ per row.
		_, args, err := t.Bind(row)
		if err != nil {
			err = fmt.Errorf("batch row %d: %w", i, err)
			db.observe(ctx, span, sqlText, nil, time.Since(start), total, err)
			return total, err
		}

		result, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			err = fmt.Errorf("batch row %d: %w", i, err)
			db.observe(ctx, span, sqlText, args, time.Since(start), total, err)
			return total, err
		}
		if n, affErr := result.RowsAffected(); affErr == nil {
			total += n
		}
	}

	db.observe(ctx, span, sqlText, nil, time.Since(start), total, nil)
	return total, nil
}
