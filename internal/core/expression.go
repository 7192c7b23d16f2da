// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/coregx/sqlplate/internal/dialects"
)

// Expression represents a predicate that renders itself as a literal SQL
// fragment for a given dialect. Expressions are the typed alternative to
// hand-written strings for values spliced through {{where --param}} and
// {{set --param}} tokens.
//
// Example:
//
//	tmpl.Render(sqlplate.Params{
//	    "filter": sqlplate.And(
//	        sqlplate.HashExp{"status": "active"},
//	        sqlplate.GreaterThan("age", 18),
//	    ),
//	})
type Expression interface {
	// Build converts the expression into a SQL fragment with all values
	// rendered as dialect-quoted literals. The fragment is spliced into the
	// statement text, so values must come from trusted application code.
	Build(dialect dialects.Dialect) (string, error)
}

// formatLiteral renders a single value as a dialect-quoted SQL literal.
func formatLiteral(dialect dialects.Dialect, value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return dialect.QuoteString(v), nil
	case bool:
		if dialect.Type() == dialects.Postgres {
			if v {
				return "TRUE", nil
			}
			return "FALSE", nil
		}
		if v {
			return "1", nil
		}
		return "0", nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case time.Time:
		return dialect.QuoteString(v.Format("2006-01-02 15:04:05")), nil
	case Expression:
		sql, err := v.Build(dialect)
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	default:
		return "", fmt.Errorf("expression: unsupported literal type %T", value)
	}
}

// RawExp represents a raw SQL fragment with optional value bindings. Each ?
// in the fragment is replaced by the corresponding value rendered as a
// literal. Use this when no other expression type covers the SQL you need.
//
// Example:
//
//	sqlplate.NewExp("age > ? AND status = ?", 18, "active")
type RawExp struct {
	SQL  string
	Args []interface{}
}

// NewExp creates a raw SQL expression with optional value bindings.
func NewExp(sql string, args ...interface{}) Expression {
	return &RawExp{
		SQL:  sql,
		Args: args,
	}
}

// Build substitutes each ? marker with its literal-rendered value. Markers
// inside single-quoted string literals are left alone.
func (e *RawExp) Build(dialect dialects.Dialect) (string, error) {
	if len(e.Args) == 0 {
		return e.SQL, nil
	}
	var b strings.Builder
	b.Grow(len(e.SQL) + 8*len(e.Args))
	next := 0
	inString := false
	for i := 0; i < len(e.SQL); i++ {
		ch := e.SQL[i]
		if ch == '\'' {
			inString = !inString
		}
		if ch == '?' && !inString {
			if next >= len(e.Args) {
				return "", fmt.Errorf("expression: more markers than args in %q", e.SQL)
			}
			lit, err := formatLiteral(dialect, e.Args[next])
			if err != nil {
				return "", err
			}
			b.WriteString(lit)
			next++
			continue
		}
		b.WriteByte(ch)
	}
	if next != len(e.Args) {
		return "", fmt.Errorf("expression: %d markers but %d args in %q", next, len(e.Args), e.SQL)
	}
	return b.String(), nil
}

// HashExp represents a hash-based expression using a map of column-value
// pairs combined with AND.
//
// Special value handling:
//   - nil value → "column IS NULL"
//   - []interface{} → "column IN (...)"
//   - Expression → recursively builds the nested expression
//
// Example:
//
//	sqlplate.HashExp{
//	    "status": "active",                // status = 'active'
//	    "age": []interface{}{18, 19},      // age IN (18, 19)
//	    "deleted_at": nil,                 // deleted_at IS NULL
//	}
type HashExp map[string]interface{}

// buildHashExpValue processes a single key-value pair from HashExp.
func buildHashExpValue(key string, value interface{}, dialect dialects.Dialect) (string, error) {
	col := dialects.QuoteQualified(dialect, key)

	switch v := value.(type) {
	case nil:
		return col + " IS NULL", nil

	case Expression:
		sql, err := v.Build(dialect)
		if err != nil {
			return "", err
		}
		if sql != "" {
			return "(" + sql + ")", nil
		}
		return "", nil

	case []interface{}:
		if len(v) == 0 {
			return "0=1", nil
		}
		return In(key, v...).Build(dialect)

	default:
		lit, err := formatLiteral(dialect, value)
		if err != nil {
			return "", err
		}
		return col + " = " + lit, nil
	}
}

// Build converts a HashExp into a SQL fragment. Map keys are sorted for
// deterministic generation; multiple conditions are combined with AND.
func (e HashExp) Build(dialect dialects.Dialect) (string, error) {
	if len(e) == 0 {
		return "", nil
	}

	// Sort keys for deterministic SQL generation
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		sql, err := buildHashExpValue(key, e[key], dialect)
		if err != nil {
			return "", err
		}
		if sql != "" {
			parts = append(parts, sql)
		}
	}

	if len(parts) == 0 {
		return "", nil
	}
	return strings.Join(parts, " AND "), nil
}

// CompareExp represents a comparison expression (=, <>, >, <, >=, <=).
type CompareExp struct {
	Col      string
	Operator string
	Value    interface{}
}

// Eq generates an equality expression (column = value).
// If value is nil, generates "column IS NULL" instead.
func Eq(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "=", Value: value}
}

// NotEq generates an inequality expression (column <> value).
// If value is nil, generates "column IS NOT NULL" instead.
func NotEq(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "<>", Value: value}
}

// GreaterThan generates a greater-than expression (column > value).
func GreaterThan(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: ">", Value: value}
}

// LessThan generates a less-than expression (column < value).
func LessThan(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "<", Value: value}
}

// GreaterOrEqual generates a greater-than-or-equal expression (column >= value).
func GreaterOrEqual(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: ">=", Value: value}
}

// LessOrEqual generates a less-than-or-equal expression (column <= value).
func LessOrEqual(col string, value interface{}) Expression {
	return &CompareExp{Col: col, Operator: "<=", Value: value}
}

// Build converts a comparison expression into a SQL fragment.
func (e *CompareExp) Build(dialect dialects.Dialect) (string, error) {
	col := dialects.QuoteQualified(dialect, e.Col)

	// Handle NULL comparison
	if e.Value == nil {
		if e.Operator == "=" {
			return col + " IS NULL", nil
		}
		if e.Operator == "<>" {
			return col + " IS NOT NULL", nil
		}
	}

	lit, err := formatLiteral(dialect, e.Value)
	if err != nil {
		return "", err
	}
	return col + " " + e.Operator + " " + lit, nil
}

// InExp represents an IN or NOT IN expression.
type InExp struct {
	Col    string
	Values []interface{}
	Not    bool
}

// In generates an IN expression (column IN (value1, value2, ...)).
// If values is empty, generates "0=1" (always false).
// A single value collapses to a plain equality comparison.
func In(col string, values ...interface{}) Expression {
	return &InExp{Col: col, Values: values, Not: false}
}

// NotIn generates a NOT IN expression (column NOT IN (value1, value2, ...)).
// If values is empty, generates an empty fragment (always true).
// A single value collapses to a plain inequality comparison.
func NotIn(col string, values ...interface{}) Expression {
	return &InExp{Col: col, Values: values, Not: true}
}

// buildInExpSingleValue handles an IN expression with a single value.
func buildInExpSingleValue(dialect dialects.Dialect, col string, val interface{}, not bool) (string, error) {
	if val == nil {
		if not {
			return col + " IS NOT NULL", nil
		}
		return col + " IS NULL", nil
	}
	lit, err := formatLiteral(dialect, val)
	if err != nil {
		return "", err
	}
	if not {
		return col + " <> " + lit, nil
	}
	return col + " = " + lit, nil
}

// Build converts an IN expression into a SQL fragment.
func (e *InExp) Build(dialect dialects.Dialect) (string, error) {
	if len(e.Values) == 0 {
		// Empty IN clause
		if e.Not {
			return "", nil // NOT IN () → always true
		}
		return "0=1", nil // IN () → always false
	}

	col := dialects.QuoteQualified(dialect, e.Col)

	// Single value optimization
	if len(e.Values) == 1 {
		return buildInExpSingleValue(dialect, col, e.Values[0], e.Not)
	}

	lits := make([]string, 0, len(e.Values))
	for _, val := range e.Values {
		lit, err := formatLiteral(dialect, val)
		if err != nil {
			return "", err
		}
		lits = append(lits, lit)
	}

	op := "IN"
	if e.Not {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(lits, ", ")), nil
}

// BetweenExp represents a BETWEEN or NOT BETWEEN expression.
type BetweenExp struct {
	Col      string
	From, To interface{}
	Not      bool
}

// Between generates a BETWEEN expression (column BETWEEN from AND to).
func Between(col string, from, to interface{}) Expression {
	return &BetweenExp{Col: col, From: from, To: to, Not: false}
}

// NotBetween generates a NOT BETWEEN expression (column NOT BETWEEN from AND to).
func NotBetween(col string, from, to interface{}) Expression {
	return &BetweenExp{Col: col, From: from, To: to, Not: true}
}

// Build converts a BETWEEN expression into a SQL fragment.
func (e *BetweenExp) Build(dialect dialects.Dialect) (string, error) {
	col := dialects.QuoteQualified(dialect, e.Col)

	op := "BETWEEN"
	if e.Not {
		op = "NOT BETWEEN"
	}

	from, err := formatLiteral(dialect, e.From)
	if err != nil {
		return "", err
	}
	to, err := formatLiteral(dialect, e.To)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s AND %s", col, op, from, to), nil
}

// LikeExp represents a LIKE or NOT LIKE expression with automatic escaping.
type LikeExp struct {
	Col         string
	Values      []string
	Like        string   // "LIKE" or "NOT LIKE"
	Or          bool     // true = OR, false = AND
	Left, Right bool     // Wildcard matching on left/right
	Escape      []string // Escape character pairs
}

// DefaultLikeEscape specifies the default special character escaping for LIKE
// expressions. The strings at 2i positions are the special characters to be
// escaped while those at 2i+1 positions are the corresponding escaped versions.
var DefaultLikeEscape = []string{"\\", "\\\\", "%", "\\%", "_", "\\_"}

// Like generates a LIKE expression with automatic wildcard and escaping.
// By default, values are wrapped with % on both sides for partial matching.
//
// Example:
//
//	sqlplate.Like("name", "john")           // name LIKE '%john%'
//	sqlplate.Like("name", "key", "word")    // name LIKE '%key%' AND name LIKE '%word%'
func Like(col string, values ...string) *LikeExp {
	return &LikeExp{
		Col:    col,
		Values: values,
		Like:   "LIKE",
		Left:   true,
		Right:  true,
		Escape: DefaultLikeEscape,
	}
}

// NotLike generates a NOT LIKE expression.
// For example: NotLike("name", "john") → name NOT LIKE '%john%'
func NotLike(col string, values ...string) *LikeExp {
	exp := Like(col, values...)
	exp.Like = "NOT LIKE"
	return exp
}

// OrLike generates a LIKE expression where the column should match ANY of
// the values (OR logic).
// For example: OrLike("name", "key", "word") → name LIKE '%key%' OR name LIKE '%word%'
func OrLike(col string, values ...string) *LikeExp {
	exp := Like(col, values...)
	exp.Or = true
	return exp
}

// OrNotLike generates a NOT LIKE expression with OR logic.
func OrNotLike(col string, values ...string) *LikeExp {
	exp := NotLike(col, values...)
	exp.Or = true
	return exp
}

// Match sets wildcard matching on the left and/or right of the values.
// By default, both are true (e.g., "%value%").
// Call Match(false, true) to generate "value%" (prefix matching only).
func (e *LikeExp) Match(left, right bool) *LikeExp {
	e.Left, e.Right = left, right
	return e
}

// EscapeChars sets custom escape characters for LIKE expressions.
// Must be an even number of strings: [special1, escaped1, special2, escaped2, ...].
func (e *LikeExp) EscapeChars(chars ...string) *LikeExp {
	if len(chars)%2 != 0 {
		panic("LikeExp.EscapeChars requires even number of strings")
	}
	e.Escape = chars
	return e
}

// Build converts a LIKE expression into a SQL fragment.
func (e *LikeExp) Build(dialect dialects.Dialect) (string, error) {
	if len(e.Values) == 0 {
		return "", nil
	}

	col := dialects.QuoteQualified(dialect, e.Col)
	parts := make([]string, 0, len(e.Values))

	for _, val := range e.Values {
		// Escape special characters
		for j := 0; j < len(e.Escape); j += 2 {
			val = strings.ReplaceAll(val, e.Escape[j], e.Escape[j+1])
		}

		// Add wildcards
		if e.Left {
			val = "%" + val
		}
		if e.Right {
			val += "%"
		}

		parts = append(parts, col+" "+e.Like+" "+dialect.QuoteString(val))
	}

	join := " AND "
	if e.Or {
		join = " OR "
	}
	return strings.Join(parts, join), nil
}

// AndOrExp represents an AND or OR combination of multiple expressions.
type AndOrExp struct {
	Exps []Expression
	Op   string // "AND" or "OR"
}

// And generates an AND expression which concatenates multiple expressions
// with AND. Nil expressions are automatically filtered out.
//
// Example:
//
//	sqlplate.And(
//	    sqlplate.Eq("status", 1),
//	    sqlplate.GreaterThan("age", 18),
//	)
//
// Generates: (status = 1) AND (age > 18)
func And(exps ...Expression) Expression {
	return &AndOrExp{Exps: exps, Op: "AND"}
}

// Or generates an OR expression which concatenates multiple expressions with
// OR. Nil expressions are automatically filtered out.
func Or(exps ...Expression) Expression {
	return &AndOrExp{Exps: exps, Op: "OR"}
}

// Build converts an AND/OR expression into a SQL fragment.
func (e *AndOrExp) Build(dialect dialects.Dialect) (string, error) {
	if len(e.Exps) == 0 {
		return "", nil
	}

	var parts []string
	for _, exp := range e.Exps {
		if exp == nil {
			continue
		}
		sql, err := exp.Build(dialect)
		if err != nil {
			return "", err
		}
		if sql != "" {
			parts = append(parts, sql)
		}
	}

	if len(parts) == 0 {
		return "", nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}

	// Wrap each part in parentheses for correct precedence
	return "(" + strings.Join(parts, ") "+e.Op+" (") + ")", nil
}

// NotExp represents a NOT expression which prefixes NOT to an expression.
type NotExp struct {
	Exp Expression
}

// Not generates a NOT expression which prefixes "NOT" to the specified
// expression.
//
// Example:
//
//	sqlplate.Not(sqlplate.In("status", 1, 2, 3))
//
// Generates: NOT (status IN (1, 2, 3))
func Not(exp Expression) Expression {
	return &NotExp{Exp: exp}
}

// Build converts a NOT expression into a SQL fragment.
func (e *NotExp) Build(dialect dialects.Dialect) (string, error) {
	if e.Exp == nil {
		return "", nil
	}

	sql, err := e.Exp.Build(dialect)
	if err != nil {
		return "", err
	}
	if sql == "" {
		return "", nil
	}
	return "NOT (" + sql + ")", nil
}

// ExistsExp represents an EXISTS or NOT EXISTS subquery predicate.
type ExistsExp struct {
	Subquery string
	Not      bool
}

// Exists generates an EXISTS predicate around a subquery.
func Exists(subquery string) Expression {
	return &ExistsExp{Subquery: subquery}
}

// NotExists generates a NOT EXISTS predicate around a subquery.
func NotExists(subquery string) Expression {
	return &ExistsExp{Subquery: subquery, Not: true}
}

// Build converts an EXISTS expression into a SQL fragment.
func (e *ExistsExp) Build(_ dialects.Dialect) (string, error) {
	if e.Subquery == "" {
		return "", nil
	}
	if e.Not {
		return "NOT EXISTS (" + e.Subquery + ")", nil
	}
	return "EXISTS (" + e.Subquery + ")", nil
}

// AssignExp represents a comma-joined assignment list for UPDATE SET
// clauses, spliced through {{set --param}} tokens.
type AssignExp map[string]interface{}

// Assign creates an assignment-list expression from column-value pairs.
//
// Example:
//
//	sqlplate.Assign(map[string]interface{}{"status": "archived", "retries": 0})
//
// Generates: retries = 0, status = 'archived'
func Assign(pairs map[string]interface{}) Expression {
	return AssignExp(pairs)
}

// Build converts an assignment list into a SQL fragment. Map keys are sorted
// for deterministic generation; nil values render as NULL assignments.
func (e AssignExp) Build(dialect dialects.Dialect) (string, error) {
	if len(e) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		lit, err := formatLiteral(dialect, e[key])
		if err != nil {
			return "", err
		}
		parts = append(parts, dialect.QuoteIdentifier(key)+" = "+lit)
	}
	return strings.Join(parts, ", "), nil
}
