package dialects

import (
	"fmt"
	"strconv"
)

// DB2Dialect implements the IBM DB2 dialect. DB2 is the one positional
// dialect: every parameter renders as a bare "?" and binding happens by
// occurrence order, not by name.
type DB2Dialect struct{}

func init() {
	RegisterDialect("db2", &DB2Dialect{})
}

// Type returns the DB2 type tag.
func (d *DB2Dialect) Type() Type { return DB2 }

// QuoteIdentifier quotes an identifier using double quotes.
func (d *DB2Dialect) QuoteIdentifier(s string) string {
	return quoteWith(s, `"`, `"`)
}

// QuoteString quotes a string literal using single quotes.
func (d *DB2Dialect) QuoteString(s string) string {
	return quoteWith(s, "'", "'")
}

// Placeholder returns "?" regardless of name; DB2 parameters are positional.
func (d *DB2Dialect) Placeholder(_ string) string { return "?" }

// ParamPrefix returns "?".
func (d *DB2Dialect) ParamPrefix() string { return "?" }

// Positional returns true.
func (d *DB2Dialect) Positional() bool { return true }

// ColumnQuotes returns the double-quote pair.
func (d *DB2Dialect) ColumnQuotes() (string, string) { return `"`, `"` }

// StringQuotes returns the single-quote pair.
func (d *DB2Dialect) StringQuotes() (string, string) { return "'", "'" }

// Concat joins expressions with the || operator.
func (d *DB2Dialect) Concat(parts ...string) string {
	return joinConcat(" || ", parts)
}

// CurrentTimestamp returns CURRENT TIMESTAMP.
func (d *DB2Dialect) CurrentTimestamp() string { return "CURRENT TIMESTAMP" }

// DateAddDays shifts a date expression using DAYS arithmetic.
func (d *DB2Dialect) DateAddDays(expr string, days int) string {
	return fmt.Sprintf("%s + %d DAYS", expr, days)
}

// LimitClause renders FETCH FIRST n ROWS ONLY.
func (d *DB2Dialect) LimitClause(n int64) string {
	return "FETCH FIRST " + strconv.FormatInt(n, 10) + " ROWS ONLY"
}

// OffsetClause renders OFFSET n ROWS.
func (d *DB2Dialect) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10) + " ROWS"
}

// Cast renders CAST(expr AS type).
func (d *DB2Dialect) Cast(expr, sqlType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, sqlType)
}

// Conditional renders a CASE WHEN expression.
func (d *DB2Dialect) Conditional(cond, then, els string) string {
	return caseConditional(cond, then, els)
}
