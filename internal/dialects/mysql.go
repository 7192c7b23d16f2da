package dialects

import (
	"fmt"
	"strconv"
	"strings"
)

// MySQLDialect implements the MySQL dialect: backtick identifier quoting and
// "@" named parameters.
type MySQLDialect struct{}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
	RegisterDialect("mariadb", &MySQLDialect{})
}

// Type returns the MySQL type tag.
func (d *MySQLDialect) Type() Type { return MySQL }

// QuoteIdentifier quotes an identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return quoteWith(s, "`", "`")
}

// QuoteString quotes a string literal using single quotes.
func (d *MySQLDialect) QuoteString(s string) string {
	return quoteWith(s, "'", "'")
}

// Placeholder returns the named parameter reference (@name).
func (d *MySQLDialect) Placeholder(name string) string { return "@" + name }

// ParamPrefix returns "@".
func (d *MySQLDialect) ParamPrefix() string { return "@" }

// Positional returns false; MySQL parameters are named.
func (d *MySQLDialect) Positional() bool { return false }

// ColumnQuotes returns the backtick quote pair.
func (d *MySQLDialect) ColumnQuotes() (string, string) { return "`", "`" }

// StringQuotes returns the single-quote pair.
func (d *MySQLDialect) StringQuotes() (string, string) { return "'", "'" }

// Concat joins expressions using the CONCAT function.
func (d *MySQLDialect) Concat(parts ...string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return "CONCAT(" + strings.Join(parts, ", ") + ")"
}

// CurrentTimestamp returns NOW().
func (d *MySQLDialect) CurrentTimestamp() string { return "NOW()" }

// DateAddDays shifts a datetime expression using DATE_ADD.
func (d *MySQLDialect) DateAddDays(expr string, days int) string {
	return fmt.Sprintf("DATE_ADD(%s, INTERVAL %d DAY)", expr, days)
}

// LimitClause renders LIMIT n.
func (d *MySQLDialect) LimitClause(n int64) string {
	return "LIMIT " + strconv.FormatInt(n, 10)
}

// OffsetClause renders OFFSET n.
func (d *MySQLDialect) OffsetClause(n int64) string {
	return "OFFSET " + strconv.FormatInt(n, 10)
}

// Cast renders CAST(expr AS type).
func (d *MySQLDialect) Cast(expr, sqlType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", expr, sqlType)
}

// Conditional renders an IF expression.
func (d *MySQLDialect) Conditional(cond, then, els string) string {
	return fmt.Sprintf("IF(%s, %s, %s)", cond, then, els)
}
