package core

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/coregx/sqlplate/internal/dialects"
	"github.com/coregx/sqlplate/internal/schema"
)

// builderState tracks the lifecycle of a Builder.
type builderState int

const (
	builderOpen builderState = iota
	builderBuilt
	builderClosed
)

// bufferPool recycles accumulation buffers across builders.
var bufferPool = sync.Pool{
	New: func() interface{} { return &strings.Builder{} },
}

// Builder accumulates SQL text and named parameters and produces an
// executable Template. Each raw ? marker in an appended fragment consumes one
// argument and is renamed to a sequential parameter (p0, p1, ...) written in
// the dialect's placeholder style, so fragments stay portable across
// dialects.
//
// A Builder is single-use: Build finalizes it exactly once and Close
// releases its buffer. Misuse (appending after Build, building twice,
// invalid construction arguments) panics; data problems inside appended
// templates are recorded and returned by Build.
//
// Example:
//
//	b := sqlplate.NewBuilder(dialect)
//	defer b.Close()
//	b.Append("SELECT * FROM users WHERE id = ?", 123)
//	tmpl, err := b.Build()
//	// tmpl.SQL() == "SELECT * FROM users WHERE id = @p0" on SQLite
type Builder struct {
	dialect    dialects.Dialect
	ctx        *Context
	buf        *strings.Builder
	sql        string // final text, set by Build
	params     []Param
	paramIndex map[string]int
	paramOrder []string
	seq        int
	state      builderState
	err        error // first data error, returned by Build
}

// NewBuilder creates a Builder for the given dialect.
func NewBuilder(dialect dialects.Dialect) *Builder {
	return newBuilder(dialect, nil, 0)
}

// NewBuilderSize creates a Builder with a pre-sized buffer for callers that
// know the approximate output length. capacity must be positive.
func NewBuilderSize(dialect dialects.Dialect, capacity int) *Builder {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewBuilderSize: capacity must be positive, got %d", capacity))
	}
	return newBuilder(dialect, nil, capacity)
}

// NewContextBuilder creates a Builder bound to a placeholder context, which
// enables AppendTemplate. The builder targets the context's dialect.
func NewContextBuilder(ctx *Context) *Builder {
	if ctx == nil {
		panic("NewContextBuilder: nil context")
	}
	return newBuilder(ctx.dialect, ctx, 0)
}

func newBuilder(dialect dialects.Dialect, ctx *Context, capacity int) *Builder {
	if dialect == nil {
		panic("NewBuilder: nil dialect")
	}
	buf := bufferPool.Get().(*strings.Builder)
	buf.Reset()
	if capacity > 0 {
		buf.Grow(capacity)
	}
	return &Builder{
		dialect: dialect,
		ctx:     ctx,
		buf:     buf,
	}
}

// mustBeOpen panics when the builder can no longer be mutated.
func (b *Builder) mustBeOpen(op string) {
	switch b.state {
	case builderBuilt:
		panic(op + ": builder already built")
	case builderClosed:
		panic(op + ": builder is closed")
	}
}

// fail records the first data error for Build to return.
func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// nextName returns a fresh synthetic parameter name.
func (b *Builder) nextName() string {
	for {
		name := "p" + strconv.Itoa(b.seq)
		b.seq++
		if _, taken := b.paramIndex[name]; !taken {
			return name
		}
	}
}

// setParam adds or overwrites a named binding, preserving first-seen order.
func (b *Builder) setParam(name string, value interface{}) {
	if b.paramIndex == nil {
		b.paramIndex = make(map[string]int)
	}
	if i, ok := b.paramIndex[name]; ok {
		b.params[i].Value = value
		return
	}
	b.paramIndex[name] = len(b.params)
	b.params = append(b.params, Param{Name: name, Value: value})
}

// Append adds a SQL fragment. Each ? marker outside single-quoted string
// literals consumes one argument and becomes an auto-named parameter in the
// dialect's placeholder style. Panics if the marker and argument counts
// differ.
func (b *Builder) Append(sql string, args ...interface{}) *Builder {
	b.mustBeOpen("Append")

	markers := 0
	inString := false
	for i := 0; i < len(sql); i++ {
		if sql[i] == '\'' {
			inString = !inString
		}
		if sql[i] == '?' && !inString {
			markers++
		}
	}
	if markers != len(args) {
		panic(fmt.Sprintf("Append: %d markers but %d arguments", markers, len(args)))
	}

	next := 0
	inString = false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			inString = !inString
		}
		if ch == '?' && !inString {
			name := b.nextName()
			b.setParam(name, args[next])
			b.paramOrder = append(b.paramOrder, name)
			b.buf.WriteString(b.dialect.Placeholder(name))
			next++
			continue
		}
		b.buf.WriteByte(ch)
	}
	return b
}

// AppendRaw adds text verbatim with no marker processing. Empty or
// whitespace-only text is skipped.
func (b *Builder) AppendRaw(sql string) *Builder {
	b.mustBeOpen("AppendRaw")
	if strings.TrimSpace(sql) == "" {
		return b
	}
	b.buf.WriteString(sql)
	return b
}

// AppendTemplate expands a placeholder template against the builder's bound
// context and appends the result. params supplies values for the template's
// dynamic tokens and parameter references: a Params map, a plain
// map[string]interface{}, a struct or struct pointer (fields become
// parameters keyed by column name), or nil. Same-named parameters already on
// the builder are overwritten. Template errors are recorded and returned by
// Build; calling without a bound context panics.
func (b *Builder) AppendTemplate(template string, params interface{}) *Builder {
	b.mustBeOpen("AppendTemplate")
	if b.ctx == nil {
		panic("AppendTemplate: builder has no template context")
	}
	values, err := coerceParams(params)
	if err != nil {
		b.fail(err)
		return b
	}
	tmpl, err := Prepare(template, b.ctx)
	if err != nil {
		b.fail(err)
		return b
	}
	text, err := tmpl.Render(values)
	if err != nil {
		b.fail(err)
		return b
	}
	b.buf.WriteString(text)
	for _, name := range getKeys(values) {
		b.setParam(name, values[name])
	}
	b.paramOrder = append(b.paramOrder, tmpl.paramOrder...)
	return b
}

// coerceParams normalizes an AppendTemplate params argument to a Params map.
func coerceParams(params interface{}) (Params, error) {
	switch v := params.(type) {
	case nil:
		return nil, nil
	case Params:
		return v, nil
	case map[string]interface{}:
		return Params(v), nil
	default:
		values, err := schema.FieldValues(params)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModelType, err)
		}
		return Params(values), nil
	}
}

// AppendSubquery appends another builder's accumulated SQL wrapped in
// parentheses, renaming its parameters wherever they would collide with ones
// already recorded here. Both builders must target the same dialect.
func (b *Builder) AppendSubquery(sub *Builder) *Builder {
	b.mustBeOpen("AppendSubquery")
	if sub == nil {
		panic("AppendSubquery: nil subquery")
	}
	if sub == b {
		panic("AppendSubquery: builder cannot nest itself")
	}
	if sub.state == builderClosed {
		panic("AppendSubquery: subquery builder is closed")
	}
	if sub.dialect.Type() != b.dialect.Type() {
		panic("AppendSubquery: dialect mismatch")
	}
	if sub.err != nil {
		b.fail(sub.err)
	}

	text := sub.snapshot()
	renames := make(map[string]string)
	for _, p := range sub.params {
		name := p.Name
		if _, taken := b.paramIndex[name]; taken {
			fresh := b.nextName()
			renames[name] = fresh
			name = fresh
		}
		b.setParam(name, p.Value)
	}
	if len(renames) > 0 {
		text = renameParamRefs(text, b.dialect, renames)
	}
	for _, name := range sub.paramOrder {
		if fresh, ok := renames[name]; ok {
			name = fresh
		}
		b.paramOrder = append(b.paramOrder, name)
	}
	b.buf.WriteString("(")
	b.buf.WriteString(text)
	b.buf.WriteString(")")
	return b
}

// renameParamRefs rewrites prefix+name parameter references according to the
// rename map, in a single pass so chained renames never cascade. Positional
// dialects carry bare markers with nothing to rewrite; references inside
// single-quoted string literals are left alone.
func renameParamRefs(sql string, dialect dialects.Dialect, renames map[string]string) string {
	prefix := dialect.ParamPrefix()
	if dialect.Positional() || prefix == "" {
		return sql
	}
	lead := prefix[0]
	var b strings.Builder
	b.Grow(len(sql) + 16)
	inString := false
	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		if ch == '\'' {
			inString = !inString
		}
		if ch == lead && !inString {
			j := i + 1
			for j < len(sql) && isParamChar(sql[j]) {
				j++
			}
			if j > i+1 {
				if fresh, ok := renames[sql[i+1:j]]; ok {
					b.WriteString(prefix)
					b.WriteString(fresh)
					i = j - 1
					continue
				}
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// isParamChar reports whether c can appear in a parameter name.
func isParamChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// snapshot returns the accumulated text without finalizing the builder.
func (b *Builder) snapshot() string {
	if b.state == builderBuilt {
		return b.sql
	}
	return b.buf.String()
}

// Build finalizes the builder and returns the accumulated SQL and parameters
// as a Template. A builder builds exactly once; call Close afterward to
// recycle the buffer.
func (b *Builder) Build() (*Template, error) {
	b.mustBeOpen("Build")
	b.sql = b.buf.String()
	b.state = builderBuilt
	if b.err != nil {
		return nil, b.err
	}
	t := &Template{
		sql:        b.sql,
		source:     b.sql,
		dialect:    b.dialect,
		params:     b.params,
		paramOrder: b.paramOrder,
		ctx:        b.ctx,
	}
	if len(b.params) > 0 {
		t.paramIndex = make(map[string]int, len(b.params))
		for i, p := range b.params {
			t.paramIndex[p.Name] = i
		}
	}
	return t, nil
}

// Close releases the builder's buffer back to the pool. Close is idempotent;
// any other use after Close panics.
func (b *Builder) Close() {
	if b.state == builderClosed {
		return
	}
	b.state = builderClosed
	if b.buf != nil {
		b.buf.Reset()
		bufferPool.Put(b.buf)
		b.buf = nil
	}
}
