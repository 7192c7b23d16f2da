package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/coregx/sqlplate/internal/dialects"
	"github.com/coregx/sqlplate/internal/schema"
)

// placeholderType classifies a token as resolvable at prepare time or
// deferred to render time.
type placeholderType int

const (
	staticPlaceholder placeholderType = iota
	dynamicPlaceholder
)

// handler is one named placeholder strategy. Classification may depend on the
// token's options: {{set}} is static until --param makes it dynamic.
// validate runs eagerly at prepare time for every token, expand only for
// static ones, render only for dynamic ones.
type handler interface {
	classify(opts optionList) placeholderType
	validate(ctx *Context, opts optionList) error
	expand(ctx *Context, opts optionList) (string, error)
	render(ctx *Context, opts optionList, params Params) (string, error)
}

// paramEmitter is implemented by handlers whose static expansion emits
// parameter references. The preparer records the names in emission order so
// positional dialects can bind values later.
type paramEmitter interface {
	emittedParams(ctx *Context, opts optionList) []string
}

// handlers is the closed registry of placeholder strategies. The token
// surface of the engine is fixed; there is no user-facing registration.
var handlers = map[string]handler{
	"table":       tableHandler{},
	"columns":     columnsHandler{},
	"values":      valuesHandler{},
	"set":         setHandler{},
	"where":       whereHandler{},
	"orderby":     orderbyHandler{},
	"limit":       limitHandler{},
	"offset":      offsetHandler{},
	"var":         varHandler{},
	"batchvalues": batchValuesHandler{},
}

// filteredColumns applies --exclude options to the context's column list.
// Exclusion matches the source property name, case-sensitively; repeating
// the flag excludes several properties.
func filteredColumns(ctx *Context, opts optionList) []schema.Column {
	excluded := opts.all("exclude")
	if len(excluded) == 0 {
		return ctx.columns
	}
	cols := make([]schema.Column, 0, len(ctx.columns))
	for _, col := range ctx.columns {
		skip := false
		for _, ex := range excluded {
			if col.Property == ex {
				skip = true
				break
			}
		}
		if !skip {
			cols = append(cols, col)
		}
	}
	return cols
}

// spliceParam resolves a dynamic token's runtime value to literal SQL text.
// nil renders empty, a string splices verbatim, an Expression builds against
// the context's dialect. Anything else is a bad value.
func spliceParam(ctx *Context, tokenName, key string, params Params) (string, error) {
	value, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: %s (required by {{%s}})", ErrMissingParameter, key, tokenName)
	}
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case Expression:
		return v.Build(ctx.dialect)
	default:
		return "", fmt.Errorf("%w: %s: {{%s}} expects string, Expression, or nil, got %T", ErrBadParamValue, key, tokenName, value)
	}
}

// toInt64 normalizes any integer kind to int64.
func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func errNotStatic(name string) (string, error) {
	return "", fmt.Errorf("{{%s}}: placeholder is always dynamic", name)
}

// tableHandler expands {{table}} to the dialect-quoted table name. Dotted
// names quote each part separately.
type tableHandler struct{}

func (tableHandler) classify(optionList) placeholderType { return staticPlaceholder }

func (tableHandler) validate(ctx *Context, opts optionList) error {
	if err := opts.allow("table"); err != nil {
		return err
	}
	if ctx.table == "" {
		return fmt.Errorf("{{table}}: no table name on context")
	}
	return nil
}

func (tableHandler) expand(ctx *Context, _ optionList) (string, error) {
	return dialects.QuoteQualified(ctx.dialect, ctx.table), nil
}

func (h tableHandler) render(ctx *Context, opts optionList, _ Params) (string, error) {
	return h.expand(ctx, opts)
}

// columnsHandler expands {{columns}} to the comma-joined quoted column list.
type columnsHandler struct{}

func (columnsHandler) classify(optionList) placeholderType { return staticPlaceholder }

func (columnsHandler) validate(_ *Context, opts optionList) error {
	return opts.allow("columns", "exclude")
}

func (columnsHandler) expand(ctx *Context, opts optionList) (string, error) {
	cols := filteredColumns(ctx, opts)
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, ctx.dialect.QuoteIdentifier(col.Name))
	}
	return strings.Join(parts, ", "), nil
}

func (h columnsHandler) render(ctx *Context, opts optionList, _ Params) (string, error) {
	return h.expand(ctx, opts)
}

// valuesHandler expands {{values}} to one parameter reference per column, in
// column order. Positional dialects produce bare markers.
type valuesHandler struct{}

func (valuesHandler) classify(optionList) placeholderType { return staticPlaceholder }

func (valuesHandler) validate(_ *Context, opts optionList) error {
	return opts.allow("values", "exclude")
}

func (valuesHandler) expand(ctx *Context, opts optionList) (string, error) {
	cols := filteredColumns(ctx, opts)
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, ctx.dialect.Placeholder(col.Name))
	}
	return strings.Join(parts, ", "), nil
}

func (valuesHandler) emittedParams(ctx *Context, opts optionList) []string {
	cols := filteredColumns(ctx, opts)
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	return names
}

func (h valuesHandler) render(ctx *Context, opts optionList, _ Params) (string, error) {
	return h.expand(ctx, opts)
}

// setHandler expands {{set}}. Without --param it is static and produces a
// "column = placeholder" pair per column; with --param it defers to render
// time and splices caller-supplied assignment SQL.
type setHandler struct{}

func (setHandler) classify(opts optionList) placeholderType {
	if _, ok := opts.get("param"); ok {
		return dynamicPlaceholder
	}
	return staticPlaceholder
}

func (setHandler) validate(_ *Context, opts optionList) error {
	return opts.allow("set", "exclude", "param")
}

func (setHandler) expand(ctx *Context, opts optionList) (string, error) {
	d := ctx.dialect
	cols := filteredColumns(ctx, opts)
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, d.QuoteIdentifier(col.Name)+" = "+d.Placeholder(col.Name))
	}
	return strings.Join(parts, ", "), nil
}

func (h setHandler) emittedParams(ctx *Context, opts optionList) []string {
	if h.classify(opts) == dynamicPlaceholder {
		return nil
	}
	cols := filteredColumns(ctx, opts)
	names := make([]string, 0, len(cols))
	for _, col := range cols {
		names = append(names, col.Name)
	}
	return names
}

func (h setHandler) render(ctx *Context, opts optionList, params Params) (string, error) {
	if h.classify(opts) == staticPlaceholder {
		return h.expand(ctx, opts)
	}
	key, _ := opts.get("param")
	return spliceParam(ctx, "set", key, params)
}

// whereHandler defers {{where --param key}} to render time and splices the
// caller's predicate SQL. The surrounding WHERE keyword stays in the
// template; the handler contributes only the predicate text.
type whereHandler struct{}

func (whereHandler) classify(optionList) placeholderType { return dynamicPlaceholder }

func (whereHandler) validate(_ *Context, opts optionList) error {
	if err := opts.allow("where", "param"); err != nil {
		return err
	}
	_, err := opts.require("where", "param")
	return err
}

func (whereHandler) expand(*Context, optionList) (string, error) {
	return errNotStatic("where")
}

func (whereHandler) render(ctx *Context, opts optionList, params Params) (string, error) {
	key, _ := opts.get("param")
	return spliceParam(ctx, "where", key, params)
}

// orderbyHandler defers {{orderby --param key}} to render time. The value is
// pre-rendered column-list SQL such as "name ASC, id DESC"; nil drops the
// clause body.
type orderbyHandler struct{}

func (orderbyHandler) classify(optionList) placeholderType { return dynamicPlaceholder }

func (orderbyHandler) validate(_ *Context, opts optionList) error {
	if err := opts.allow("orderby", "param"); err != nil {
		return err
	}
	_, err := opts.require("orderby", "param")
	return err
}

func (orderbyHandler) expand(*Context, optionList) (string, error) {
	return errNotStatic("orderby")
}

func (orderbyHandler) render(ctx *Context, opts optionList, params Params) (string, error) {
	key, _ := opts.get("param")
	return spliceParam(ctx, "orderby", key, params)
}

// limitHandler renders {{limit --param key}} as the dialect's row-limit
// clause. nil suppresses the clause entirely.
type limitHandler struct{}

func (limitHandler) classify(optionList) placeholderType { return dynamicPlaceholder }

func (limitHandler) validate(_ *Context, opts optionList) error {
	if err := opts.allow("limit", "param"); err != nil {
		return err
	}
	_, err := opts.require("limit", "param")
	return err
}

func (limitHandler) expand(*Context, optionList) (string, error) {
	return errNotStatic("limit")
}

func (limitHandler) render(ctx *Context, opts optionList, params Params) (string, error) {
	key, _ := opts.get("param")
	value, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: %s (required by {{limit}})", ErrMissingParameter, key)
	}
	if value == nil {
		return "", nil
	}
	n, ok := toInt64(value)
	if !ok {
		return "", fmt.Errorf("%w: %s: {{limit}} expects an integer or nil, got %T", ErrBadParamValue, key, value)
	}
	return ctx.dialect.LimitClause(n), nil
}

// offsetHandler renders {{offset --param key}} as the dialect's row-skip
// clause. nil suppresses the clause entirely.
type offsetHandler struct{}

func (offsetHandler) classify(optionList) placeholderType { return dynamicPlaceholder }

func (offsetHandler) validate(_ *Context, opts optionList) error {
	if err := opts.allow("offset", "param"); err != nil {
		return err
	}
	_, err := opts.require("offset", "param")
	return err
}

func (offsetHandler) expand(*Context, optionList) (string, error) {
	return errNotStatic("offset")
}

func (offsetHandler) render(ctx *Context, opts optionList, params Params) (string, error) {
	key, _ := opts.get("param")
	value, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: %s (required by {{offset}})", ErrMissingParameter, key)
	}
	if value == nil {
		return "", nil
	}
	n, ok := toInt64(value)
	if !ok {
		return "", fmt.Errorf("%w: %s: {{offset}} expects an integer or nil, got %T", ErrBadParamValue, key, value)
	}
	return ctx.dialect.OffsetClause(n), nil
}

// varHandler splices a resolver-provided fragment for {{var --name x}}. The
// value goes into the SQL text verbatim: never quoted, never parameterized.
// A missing resolver is caught eagerly at prepare time.
type varHandler struct{}

func (varHandler) classify(optionList) placeholderType { return dynamicPlaceholder }

func (varHandler) validate(ctx *Context, opts optionList) error {
	if err := opts.allow("var", "name"); err != nil {
		return err
	}
	name, err := opts.require("var", "name")
	if err != nil {
		return err
	}
	if !ctx.HasVarProvider() {
		return fmt.Errorf("%w for variable %q", ErrMissingVarProvider, name)
	}
	return nil
}

func (varHandler) expand(*Context, optionList) (string, error) {
	return errNotStatic("var")
}

func (varHandler) render(ctx *Context, opts optionList, _ Params) (string, error) {
	name, _ := opts.get("name")
	return ctx.ResolveVar(name)
}

// batchValuesHandler expands {{batchvalues}} to parenthesized value tuples
// for multi-row INSERT. The row count comes from --rows at prepare time or
// from --param at render time. Named parameter dialects suffix each
// parameter with its row index; positional dialects repeat bare markers.
type batchValuesHandler struct{}

func (batchValuesHandler) classify(opts optionList) placeholderType {
	if _, ok := opts.get("param"); ok {
		return dynamicPlaceholder
	}
	return staticPlaceholder
}

func (batchValuesHandler) validate(_ *Context, opts optionList) error {
	if err := opts.allow("batchvalues", "rows", "param", "exclude"); err != nil {
		return err
	}
	_, hasRows := opts.get("rows")
	_, hasParam := opts.get("param")
	if hasRows == hasParam {
		return fmt.Errorf("%w: {{batchvalues}} requires exactly one of --rows or --param", ErrBadOption)
	}
	if hasRows {
		_, err := staticRowCount(opts)
		return err
	}
	return nil
}

func (h batchValuesHandler) expand(ctx *Context, opts optionList) (string, error) {
	rows, err := staticRowCount(opts)
	if err != nil {
		return "", err
	}
	return batchTuples(ctx, opts, rows), nil
}

func (h batchValuesHandler) emittedParams(ctx *Context, opts optionList) []string {
	if h.classify(opts) == dynamicPlaceholder {
		return nil
	}
	rows, err := staticRowCount(opts)
	if err != nil {
		return nil
	}
	cols := filteredColumns(ctx, opts)
	names := make([]string, 0, rows*len(cols))
	for i := 0; i < rows; i++ {
		for _, col := range cols {
			names = append(names, col.Name+strconv.Itoa(i))
		}
	}
	return names
}

func (h batchValuesHandler) render(ctx *Context, opts optionList, params Params) (string, error) {
	if h.classify(opts) == staticPlaceholder {
		return h.expand(ctx, opts)
	}
	key, _ := opts.get("param")
	value, ok := params[key]
	if !ok {
		return "", fmt.Errorf("%w: %s (required by {{batchvalues}})", ErrMissingParameter, key)
	}
	n, ok := toInt64(value)
	if !ok {
		return "", fmt.Errorf("%w: %s: {{batchvalues}} expects an integer row count, got %T", ErrBadParamValue, key, value)
	}
	if n < 1 {
		return "", fmt.Errorf("%w: %s: {{batchvalues}} row count must be at least 1, got %d", ErrBadParamValue, key, n)
	}
	return batchTuples(ctx, opts, int(n)), nil
}

// staticRowCount parses the --rows option of a static batchvalues token.
func staticRowCount(opts optionList) (int, error) {
	raw, _ := opts.get("rows")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: {{batchvalues}}: --rows expects an integer, got %q", ErrBadOption, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: {{batchvalues}}: --rows must be at least 1, got %d", ErrBadOption, n)
	}
	return n, nil
}

// batchTuples builds rows parenthesized tuples, one parameter per column,
// suffixing names with the zero-based row index.
func batchTuples(ctx *Context, opts optionList, rows int) string {
	d := ctx.dialect
	cols := filteredColumns(ctx, opts)
	tuples := make([]string, 0, rows)
	parts := make([]string, len(cols))
	for i := 0; i < rows; i++ {
		for j, col := range cols {
			parts[j] = d.Placeholder(col.Name + strconv.Itoa(i))
		}
		tuples = append(tuples, "("+strings.Join(parts, ", ")+")")
	}
	return strings.Join(tuples, ", ")
}
