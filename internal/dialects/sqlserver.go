package dialects

import (
	"fmt"
	"strconv"
)

// SQLServerDialect implements the Microsoft SQL Server dialect: bracket
// identifier quoting and "@" named parameters.
type SQLServerDialect struct{}

func init() {
	RegisterDialect("sqlserver", &SQLServerDialect{})
	RegisterDialect("mssql", &SQLServerDialect{})
}

// Type returns the SQL Server type tag.
func (d *SQLServerDialect) Type() Type { return SQLServer }

// QuoteIdentifier quotes an identifier using square brackets.
func (d *SQLServerDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, "[", "]")
}

// QuoteString quotes a string literal using single quotes.
func (d *SQLServerDialect) QuoteString(s string) string {
	return quoteWith(s, "'", "'")
}

// Placeholder returns the named parameter reference (@name).
func (d *SQLServerDialect) Placeholder(name string) string { return "@" + name }

// ParamPrefix returns "@".
func (d *SQLServerDialect) ParamPrefix() string { return "@" }

// Positional returns false; SQL Server parameters are named.
func (d *SQLServerDialect) Positional() bool { return false }

// ColumnQuotes returns the bracket quote pair.
func (d *SQLServerDialect) ColumnQuotes() (string, string) { return "[", "]" }

// StringQuotes returns the single-quote pair.
func (d *SQLServerDialect) StringQuotes() (string, string) { return "'", "'" }

// Concat joins expressions with the + operator.
func (d *SQLServerDialect) Concat(parts ...string) string {
	return joinConcat(" + ", parts)
}

// CurrentTimestamp returns GETDATE().
func (d *SQLServerDialect) CurrentTimestamp() string { return "GETDATE()" }

// DateAddDays shifts a datetime expression using DATEADD.
func (d *SQLServerDialect) DateAddDays(expr string, days int) string {
	return fmt.Sprintf("DATEADD(day, %d, %s)", days, expr)
}

// LimitClause renders FETCH FIRST n ROWS ONLY.
func (d *SQLServerDialect) LimitClause(n int64) string {
	return "FETCH FIRST " + strconv.FormatInt(n, 10) + " ROWS ONLY"
}

// OffsetClause renders OFFSET n ROWS.
func (d *SQLServerDialect) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10) + " ROWS"
}

// Cast renders CAST(expr AS type).
func (d *SQLServerDialect) Cast(expr, sqlType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, sqlType)
}

// Conditional renders an IIF expression.
func (d *SQLServerDialect) Conditional(cond, then, els string) string {
	return fmt.Sprintf("IIF(%s, %s, %s)", cond, then, els)
}
