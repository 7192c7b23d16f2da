package dialects

import (
	"fmt"
	"strconv"
)

// PostgresDialect implements the PostgreSQL dialect: double-quote identifier
// quoting and "$" named parameters.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
	RegisterDialect("postgresql", &PostgresDialect{})
}

// Type returns the PostgreSQL type tag.
func (d *PostgresDialect) Type() Type { return Postgres }

// QuoteIdentifier quotes an identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, `"`, `"`)
}

// QuoteString quotes a string literal using single quotes.
func (d *PostgresDialect) QuoteString(s string) string {
	return quoteWith(s, "'", "'")
}

// Placeholder returns the named parameter reference ($name).
func (d *PostgresDialect) Placeholder(name string) string { return "$" + name }

// ParamPrefix returns "$".
func (d *PostgresDialect) ParamPrefix() string { return "$" }

// Positional returns false; PostgreSQL parameters are named.
func (d *PostgresDialect) Positional() bool { return false }

// ColumnQuotes returns the double-quote pair.
func (d *PostgresDialect) ColumnQuotes() (string, string) { return `"`, `"` }

// StringQuotes returns the single-quote pair.
func (d *PostgresDialect) StringQuotes() (string, string) { return "'", "'" }

// Concat joins expressions with the || operator.
func (d *PostgresDialect) Concat(parts ...string) string {
	return joinConcat(" || ", parts)
}

// CurrentTimestamp returns CURRENT_TIMESTAMP.
func (d *PostgresDialect) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

// DateAddDays shifts a timestamp expression using interval arithmetic.
func (d *PostgresDialect) DateAddDays(expr string, days int) string {
	return fmt.Sprintf("%s + INTERVAL '%d days'", expr, days)
}

// LimitClause renders LIMIT n.
func (d *PostgresDialect) LimitClause(n int64) string {
	return "LIMIT " + strconv.FormatInt(n, 10)
}

// OffsetClause renders OFFSET n.
func (d *PostgresDialect) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10)
}

// Cast renders CAST(expr AS type).
func (d *PostgresDialect) Cast(expr, sqlType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, sqlType)
}

// Conditional renders a CASE WHEN expression.
func (d *PostgresDialect) Conditional(cond, then, els string) string {
	return caseConditional(cond, then, els)
}
