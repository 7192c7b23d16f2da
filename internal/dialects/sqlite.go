package dialects

import (
	"fmt"
	"strconv"
)

// SQLiteDialect implements the SQLite dialect. SQLite quotes identifiers with
// square brackets (accepted for SQL Server compatibility) and binds named
// parameters with the "@" prefix.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

// Type returns the SQLite type tag.
func (d *SQLiteDialect) Type() Type { return SQLite }

// QuoteIdentifier quotes an identifier using square brackets.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, "[", "]")
}

// QuoteString quotes a string literal using single quotes.
func (d *SQLiteDialect) QuoteString(s string) string {
	return quoteWith(s, "'", "'")
}

// Placeholder returns the named parameter reference (@name).
func (d *SQLiteDialect) Placeholder(name string) string { return "@" + name }

// ParamPrefix returns "@".
func (d *SQLiteDialect) ParamPrefix() string { return "@" }

// Positional returns false; SQLite parameters are named.
func (d *SQLiteDialect) Positional() bool { return false }

// ColumnQuotes returns the bracket quote pair.
func (d *SQLiteDialect) ColumnQuotes() (string, string) { return "[", "]" }

// StringQuotes returns the single-quote pair.
func (d *SQLiteDialect) StringQuotes() (string, string) { return "'", "'" }

// Concat joins expressions with the || operator.
func (d *SQLiteDialect) Concat(parts ...string) string {
	return joinConcat(" || ", parts)
}

// CurrentTimestamp returns CURRENT_TIMESTAMP.
func (d *SQLiteDialect) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

// DateAddDays shifts a datetime expression by the given number of days.
func (d *SQLiteDialect) DateAddDays(expr string, days int) string {
	return fmt.Sprintf("datetime(%s, '%+d days')", expr, days)
}

// LimitClause renders LIMIT n.
func (d *SQLiteDialect) LimitClause(n int64) string {
	return "LIMIT " + strconv.FormatInt(n, 10)
}

// OffsetClause renders OFFSET n.
func (d *SQLiteDialect) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10)
}

// Cast renders CAST(expr AS type).
func (d *SQLiteDialect) Cast(expr, sqlType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, sqlType)
}

// Conditional renders a CASE WHEN expression.
func (d *SQLiteDialect) Conditional(cond, then, els string) string {
	return caseConditional(cond, then, els)
}
