// Package core implements the dialect-aware SQL template engine: token
// scanning, placeholder expansion, parameterized SQL building, driver
// binding, and the execution layer on top of database/sql.
//
// Template text uses {{name --options}} tokens. Static tokens resolve from
// entity metadata at prepare time; dynamic tokens resolve from runtime
// parameters at render time. Literal text outside tokens is never touched.
package core

import (
	"fmt"
	"strings"
)

// Prepare resolves every static token in template against ctx and returns
// the result. Dynamic tokens are left in place byte for byte for a later
// render pass. Text without tokens passes through untouched. Unknown
// placeholder names, malformed options, and {{var}} without a resolver are
// all reported here rather than at render time.
func Prepare(template string, ctx *Context) (*Template, error) {
	if ctx == nil {
		panic("Prepare: nil context")
	}
	segs, err := scanSegments(template)
	if err != nil {
		return nil, err
	}

	t := &Template{source: template, dialect: ctx.dialect, ctx: ctx}
	tokens := 0
	var b strings.Builder
	b.Grow(len(template) + len(template)/2)
	for _, seg := range segs {
		if seg.tok == nil {
			b.WriteString(seg.text)
			continue
		}
		tokens++
		tok := seg.tok
		h, ok := handlers[tok.name]
		if !ok {
			return nil, fmt.Errorf("%w: {{%s}}", ErrUnknownPlaceholder, tok.name)
		}
		opts, err := parseOptions(tok.name, tok.rawOpts)
		if err != nil {
			return nil, err
		}
		if err := h.validate(ctx, opts); err != nil {
			return nil, err
		}
		if h.classify(opts) == dynamicPlaceholder {
			t.hasDynamic = true
			b.WriteString(tok.raw)
			continue
		}
		text, err := h.expand(ctx, opts)
		if err != nil {
			return nil, err
		}
		b.WriteString(text)
		if pe, ok := h.(paramEmitter); ok {
			t.paramOrder = append(t.paramOrder, pe.emittedParams(ctx, opts)...)
		}
	}
	if tokens == 0 {
		// Identity: no tokens means exact passthrough.
		t.sql = template
		return t, nil
	}
	t.sql = b.String()
	return t, nil
}
