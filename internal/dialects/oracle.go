package dialects

import (
	"fmt"
	"strconv"
)

// OracleDialect implements the Oracle dialect: double-quote identifier
// quoting and ":" named parameters.
type OracleDialect struct{}

func init() {
	RegisterDialect("oracle", &OracleDialect{})
}

// Type returns the Oracle type tag.
func (d *OracleDialect) Type() Type { return Oracle }

// QuoteIdentifier quotes an identifier using double quotes.
func (d *OracleDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, `"`, `"`)
}

// QuoteString quotes a string literal using single quotes.
func (d *OracleDialect) QuoteString(s string) string {
	return quoteWith(s, "'", "'")
}

// Placeholder returns the named parameter reference (:name).
func (d *OracleDialect) Placeholder(name string) string { return ":" + name }

// ParamPrefix returns ":".
func (d *OracleDialect) ParamPrefix() string { return ":" }

// Positional returns false; Oracle parameters are named.
func (d *OracleDialect) Positional() bool { return false }

// ColumnQuotes returns the double-quote pair.
func (d *OracleDialect) ColumnQuotes() (string, string) { return `"`, `"` }

// StringQuotes returns the single-quote pair.
func (d *OracleDialect) StringQuotes() (string, string) { return "'", "'" }

// Concat joins expressions with the || operator.
func (d *OracleDialect) Concat(parts ...string) string {
	return joinConcat(" || ", parts)
}

// CurrentTimestamp returns SYSTIMESTAMP.
func (d *OracleDialect) CurrentTimestamp() string { return "SYSTIMESTAMP" }

// DateAddDays shifts a date expression using interval arithmetic.
func (d *OracleDialect) DateAddDays(expr string, days int) string {
	return fmt.Sprintf("%s + INTERVAL '%d' DAY", expr, days)
}

// LimitClause renders FETCH FIRST n ROWS ONLY (Oracle 12c+).
func (d *OracleDialect) LimitClause(n int64) string {
	return "FETCH FIRST " + strconv.FormatInt(n, 10) + " ROWS ONLY"
}

// OffsetClause renders OFFSET n ROWS.
func (d *OracleDialect) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10) + " ROWS"
}

// Cast renders CAST(expr AS type).
func (d *OracleDialect) Cast(expr, sqlType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, sqlType)
}

// Conditional renders a CASE WHEN expression.
func (d *OracleDialect) Conditional(cond, then, els string) string {
	return caseConditional(cond, then, els)
}
