package core

import (
	"sort"

	"github.com/coregx/sqlplate/internal/dialects"
	"github.com/coregx/sqlplate/internal/schema"
)

// Params holds named runtime values for rendering and binding. Keys are
// parameter names without any dialect prefix.
type Params map[string]interface{}

// Param is one named binding accumulated by a Builder, kept in insertion
// order.
type Param struct {
	Name  string
	Value interface{}
}

// Template is SQL text with every static placeholder resolved, plus the
// bindings collected on the way. Templates produced by Prepare carry no
// values of their own; templates produced by a Builder carry the parameters
// accumulated during building. A template is immutable apart from output
// registration and safe to cache and share.
type Template struct {
	sql        string
	source     string
	dialect    dialects.Dialect
	params     []Param
	paramIndex map[string]int
	paramOrder []string
	hasDynamic bool
	outputs    map[string]schema.DataType
	ctx        *Context
}

// SQL returns the prepared text. Dynamic tokens, if any, are still present
// in their original form.
func (t *Template) SQL() string { return t.sql }

// Source returns the text the template was prepared from.
func (t *Template) Source() string { return t.source }

// HasDynamicPlaceholders reports whether the text still contains tokens that
// need a render pass before execution.
func (t *Template) HasDynamicPlaceholders() bool { return t.hasDynamic }

// Context returns the placeholder context the template was prepared against,
// or nil for builder-produced templates without one.
func (t *Template) Context() *Context { return t.ctx }

// Dialect returns the dialect the template targets.
func (t *Template) Dialect() dialects.Dialect { return t.dialect }

// Params returns the accumulated bindings in insertion order. The returned
// slice is shared and must be treated as read-only.
func (t *Template) Params() []Param { return t.params }

// ParamMap returns the accumulated bindings as a map.
func (t *Template) ParamMap() Params {
	m := make(Params, len(t.params))
	for _, p := range t.params {
		m[p.Name] = p.Value
	}
	return m
}

// SetOutput registers the declared type of a result column. Output metadata
// does not affect rendering or binding; scanners may consult it.
func (t *Template) SetOutput(name string, dt schema.DataType) {
	if t.outputs == nil {
		t.outputs = make(map[string]schema.DataType)
	}
	t.outputs[name] = dt
}

// Outputs returns the registered result column types, or nil when none were
// declared.
func (t *Template) Outputs() map[string]schema.DataType { return t.outputs }

// setParam adds or overwrites a named binding, preserving first-seen order.
func (t *Template) setParam(name string, value interface{}) {
	if t.paramIndex == nil {
		t.paramIndex = make(map[string]int)
	}
	if i, ok := t.paramIndex[name]; ok {
		t.params[i].Value = value
		return
	}
	t.paramIndex[name] = len(t.params)
	t.params = append(t.params, Param{Name: name, Value: value})
}

// mergedParams overlays extra on the template's own bindings. Values in
// extra win on key collision.
func (t *Template) mergedParams(extra Params) Params {
	if len(t.params) == 0 {
		return extra
	}
	all := make(Params, len(t.params)+len(extra))
	for _, p := range t.params {
		all[p.Name] = p.Value
	}
	for k, v := range extra {
		all[k] = v
	}
	return all
}

// getKeys returns the map's keys in sorted order for deterministic
// iteration.
func getKeys(params Params) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
