package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/coregx/sqlplate/internal/dialects"
	"github.com/coregx/sqlplate/internal/schema"
)

// VarProvider resolves a template variable name against a bound instance.
// It returns the literal SQL fragment to splice for the variable. Variable
// values are never parameterized, so providers must only return trusted,
// application-controlled text.
type VarProvider func(instance interface{}, name string) (string, error)

// Vars is a map-backed variable source for contexts that do not need a
// custom resolver.
type Vars map[string]string

// Resolve returns the value for name, or an error listing the known
// variable names when the lookup fails.
func (v Vars) Resolve(name string) (string, error) {
	if val, ok := v[name]; ok {
		return val, nil
	}
	known := make([]string, 0, len(v))
	for k := range v {
		known = append(known, k)
	}
	sort.Strings(known)
	return "", fmt.Errorf("%w %q. Available variables: %s", ErrUnknownVariable, name, strings.Join(known, ", "))
}

// Context carries everything placeholder expansion needs: the target dialect,
// the table name, the column metadata of the entity, and an optional variable
// resolver. A context is immutable after construction and safe for concurrent
// use; repositories typically build one per entity type and reuse it for
// every template.
type Context struct {
	dialect  dialects.Dialect
	table    string
	columns  []schema.Column
	provider VarProvider
	instance interface{}

	// vars is set when the provider came from WithVars, so the variable
	// values can participate in the fingerprint. Custom providers are opaque
	// and get a unique serial instead.
	vars           Vars
	providerSerial uint64

	// fingerprint identifies the context's expansion-relevant state for
	// template cache keys.
	fingerprint string
}

// providerSeq numbers contexts built with a custom VarProvider so that no two
// of them share a template cache slot.
var providerSeq atomic.Uint64

// ContextOption configures optional Context behavior.
type ContextOption func(*Context)

// WithVarProvider installs a custom variable resolver. The instance is passed
// through to the provider on every {{var}} resolution.
func WithVarProvider(p VarProvider, instance interface{}) ContextOption {
	return func(c *Context) {
		c.provider = p
		c.instance = instance
		c.vars = nil
		c.providerSerial = providerSeq.Add(1)
	}
}

// WithVars installs a fixed variable map as the context's resolver.
func WithVars(vars Vars) ContextOption {
	return func(c *Context) {
		c.provider = func(_ interface{}, name string) (string, error) {
			return vars.Resolve(name)
		}
		c.instance = nil
		c.vars = vars
		c.providerSerial = 0
	}
}

// WithTable overrides the table name the context was constructed with.
func WithTable(table string) ContextOption {
	return func(c *Context) {
		c.table = table
	}
}

// NewContext builds a Context for one entity. The dialect must be non-nil and
// every column must carry a name; both are programmer errors and panic.
// The column slice is retained, not copied, and must not be mutated afterward.
func NewContext(dialect dialects.Dialect, table string, columns []schema.Column, opts ...ContextOption) *Context {
	if dialect == nil {
		panic("NewContext: nil dialect")
	}
	for _, col := range columns {
		if col.Name == "" {
			panic("NewContext: empty column name for property " + col.Property)
		}
	}
	c := &Context{
		dialect: dialect,
		table:   table,
		columns: columns,
	}
	for _, opt := range opts {
		opt(c)
	}
	var fp strings.Builder
	fp.WriteString(string(dialect.Type()))
	fp.WriteByte('|')
	fp.WriteString(c.table)
	for _, col := range c.columns {
		fp.WriteByte('|')
		fp.WriteString(col.Name)
	}
	switch {
	case c.vars != nil:
		for _, name := range getVarNames(c.vars) {
			fp.WriteString("|var:")
			fp.WriteString(name)
			fp.WriteByte('=')
			fp.WriteString(c.vars[name])
		}
	case c.provider != nil:
		fp.WriteString("|provider:")
		fp.WriteString(strconv.FormatUint(c.providerSerial, 10))
	}
	c.fingerprint = fp.String()
	return c
}

// getVarNames returns the variable names in sorted order.
func getVarNames(vars Vars) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dialect returns the target dialect.
func (c *Context) Dialect() dialects.Dialect { return c.dialect }

// Table returns the table name.
func (c *Context) Table() string { return c.table }

// Columns returns the column metadata. The returned slice is shared and must
// be treated as read-only.
func (c *Context) Columns() []schema.Column { return c.columns }

// HasVarProvider reports whether a variable resolver is configured.
func (c *Context) HasVarProvider() bool { return c.provider != nil }

// ResolveVar resolves a template variable through the configured provider.
func (c *Context) ResolveVar(name string) (string, error) {
	if c.provider == nil {
		return "", fmt.Errorf("%w for variable %q", ErrMissingVarProvider, name)
	}
	value, err := c.provider(c.instance, name)
	if err != nil {
		return "", err
	}
	return value, nil
}
