package core

import (
	"fmt"
	"strings"
)

// Render resolves the template's remaining dynamic tokens against params and
// returns executable SQL text. Templates without dynamic tokens return their
// prepared text unchanged; params, including a nil map, are ignored in that
// case.
func (t *Template) Render(params Params) (string, error) {
	if !t.hasDynamic {
		return t.sql, nil
	}
	return Render(t.sql, t.ctx, params)
}

// Render runs a full resolution pass over sql: static tokens expand from the
// context, dynamic tokens resolve from params. The function is pure, and
// rendering already-rendered text is the identity, so preparing first is an
// optimization rather than a requirement.
func Render(sql string, ctx *Context, params Params) (string, error) {
	if ctx == nil {
		panic("Render: nil context")
	}
	segs, err := scanSegments(sql)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(sql) + len(sql)/2)
	for _, seg := range segs {
		if seg.tok == nil {
			b.WriteString(seg.text)
			continue
		}
		tok := seg.tok
		h, ok := handlers[tok.name]
		if !ok {
			return "", fmt.Errorf("%w: {{%s}}", ErrUnknownPlaceholder, tok.name)
		}
		opts, err := parseOptions(tok.name, tok.rawOpts)
		if err != nil {
			return "", err
		}
		if err := h.validate(ctx, opts); err != nil {
			return "", err
		}
		var text string
		if h.classify(opts) == staticPlaceholder {
			text, err = h.expand(ctx, opts)
		} else {
			text, err = h.render(ctx, opts, params)
		}
		if err != nil {
			return "", err
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
