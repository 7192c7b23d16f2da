// Package dialects provides the database dialect catalog for sqlplate: the
// lexical conventions (identifier quoting, string quoting, parameter prefix)
// and SQL-generation helpers for SQLite, SQL Server, MySQL, PostgreSQL,
// Oracle, and DB2.
package dialects

import "strings"

// Type identifies one of the supported database products.
type Type string

// Supported database types. The catalog is closed: selecting a dialect is a
// pure data lookup, not a capability negotiation.
const (
	SQLite    Type = "sqlite"
	SQLServer Type = "sqlserver"
	MySQL     Type = "mysql"
	Postgres  Type = "postgres"
	Oracle    Type = "oracle"
	DB2       Type = "db2"
)

// Dialect describes one database's lexical conventions and SQL helpers.
// Implementations are immutable singletons shared across all contexts.
type Dialect interface {
	// Type returns the database type tag.
	Type() Type
	// QuoteIdentifier quotes a column or table identifier.
	QuoteIdentifier(s string) string
	// QuoteString quotes a string literal, escaping embedded quotes.
	QuoteString(s string) string
	// Placeholder returns the named parameter reference for name
	// (e.g. "@id", "$id", ":id"). Positional dialects return "?".
	Placeholder(name string) string
	// ParamPrefix returns the parameter prefix ("@", "$", ":", "?").
	ParamPrefix() string
	// Positional reports whether parameters are positional ("?" repeated)
	// rather than named. True only for DB2.
	Positional() bool
	// ColumnQuotes returns the identifier quote pair.
	ColumnQuotes() (left, right string)
	// StringQuotes returns the string literal quote pair.
	StringQuotes() (left, right string)

	// Concat joins expressions with the dialect's string concatenation.
	Concat(parts ...string) string
	// CurrentTimestamp returns the current-timestamp function.
	CurrentTimestamp() string
	// DateAddDays returns expr shifted by the given number of days.
	DateAddDays(expr string, days int) string
	// LimitClause renders the row-limit clause for n rows.
	LimitClause(n int64) string
	// OffsetClause renders the row-offset clause for n rows.
	OffsetClause(n int64) string
	// Cast renders a type cast of expr to the given SQL type.
	Cast(expr, sqlType string) string
	// Conditional renders an inline conditional expression.
	Conditional(cond, then, els string) string
}

var dialects = make(map[string]Dialect)

// RegisterDialect registers a database dialect by name.
func RegisterDialect(name string, d Dialect) {
	dialects[name] = d
}

// GetDialect retrieves a registered dialect by name, panics if not found.
func GetDialect(name string) Dialect {
	if d, ok := dialects[strings.ToLower(name)]; ok {
		return d
	}
	panic("unsupported dialect: " + name)
}

// QuoteQualified quotes an identifier that may carry a schema prefix
// (e.g. "tenant.users"); each dot-separated part is quoted separately.
func QuoteQualified(d Dialect, identifier string) string {
	if strings.Contains(identifier, ".") {
		parts := strings.Split(identifier, ".")
		quoted := make([]string, len(parts))
		for i, part := range parts {
			quoted[i] = d.QuoteIdentifier(strings.TrimSpace(part))
		}
		return strings.Join(quoted, ".")
	}
	return d.QuoteIdentifier(strings.TrimSpace(identifier))
}

// joinConcat is the shared "||" style concatenation used by most dialects.
func joinConcat(sep string, parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	return strings.Join(parts, sep)
}

// quoteWith wraps s in the given quote pair, doubling embedded right quotes.
func quoteWith(s, left, right string) string {
	return left + strings.ReplaceAll(s, right, right+right) + right
}

// caseConditional is the portable CASE WHEN form shared by most dialects.
func caseConditional(cond, then, els string) string {
	return "CASE WHEN " + cond + " THEN " + then + " ELSE " + els + " END"
}
