package core

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/sqlplate/internal/dialects"
)

// Bind renders the template against params and converts the result into the
// form the dialect's database/sql driver expects: numbered $N markers for
// PostgreSQL, bare ? markers for MySQL and SQLite, passthrough named
// arguments for SQL Server and Oracle, and positional values for DB2.
// The template's own accumulated parameters are overlaid with params, the
// render-time map winning on collision.
func (t *Template) Bind(params Params) (string, []interface{}, error) {
	merged := t.mergedParams(params)
	text := t.sql
	if t.hasDynamic {
		var err error
		text, err = Render(t.sql, t.ctx, merged)
		if err != nil {
			return "", nil, err
		}
	}

	d := t.dialect
	if d == nil {
		panic("Bind: template has no dialect")
	}
	if d.Positional() {
		return t.bindPositional(text, merged)
	}
	switch d.Type() {
	case dialects.Postgres:
		return bindNumbered(text, d, merged)
	case dialects.MySQL, dialects.SQLite:
		return bindQuestion(text, d, merged)
	default:
		return bindNamed(text, d, merged)
	}
}

// bindPositional maps bare ? markers to values by the recorded emission
// order. The marker count must match the recorded order exactly, which only
// holds when every marker came from static expansion or builder appends.
func (t *Template) bindPositional(text string, merged Params) (string, []interface{}, error) {
	markers := countMarkers(text)
	if markers != len(t.paramOrder) {
		return "", nil, fmt.Errorf("bind: %d positional markers but %d recorded parameters", markers, len(t.paramOrder))
	}
	args := make([]interface{}, 0, len(t.paramOrder))
	for _, name := range t.paramOrder {
		value, ok := merged[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
		args = append(args, value)
	}
	return text, args, nil
}

// bindNumbered rewrites named references to $1, $2, ... in occurrence order,
// one argument per occurrence.
func bindNumbered(text string, d dialects.Dialect, merged Params) (string, []interface{}, error) {
	var args []interface{}
	out, err := replaceRefs(text, d.ParamPrefix(), func(name string) (string, error) {
		value, ok := merged[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
		args = append(args, value)
		return "$" + strconv.Itoa(len(args)), nil
	})
	if err != nil {
		return "", nil, err
	}
	return out, args, nil
}

// bindQuestion rewrites named references to bare ? markers in occurrence
// order, one argument per occurrence.
func bindQuestion(text string, d dialects.Dialect, merged Params) (string, []interface{}, error) {
	var args []interface{}
	out, err := replaceRefs(text, d.ParamPrefix(), func(name string) (string, error) {
		value, ok := merged[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
		args = append(args, value)
		return "?", nil
	})
	if err != nil {
		return "", nil, err
	}
	return out, args, nil
}

// bindNamed keeps the text untouched and passes the referenced parameters
// through as sql.Named arguments, one per distinct name.
func bindNamed(text string, d dialects.Dialect, merged Params) (string, []interface{}, error) {
	names := collectRefs(text, d.ParamPrefix())
	args := make([]interface{}, 0, len(names))
	for _, name := range names {
		value, ok := merged[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
		args = append(args, sql.Named(name, value))
	}
	return text, args, nil
}

// replaceRefs rewrites every prefix+name reference outside single-quoted
// string literals using repl.
func replaceRefs(text, prefix string, repl func(name string) (string, error)) (string, error) {
	lead := prefix[0]
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\'' {
			inString = !inString
		}
		if ch == lead && !inString {
			j := i + 1
			for j < len(text) && isParamChar(text[j]) {
				j++
			}
			if j > i+1 {
				out, err := repl(text[i+1 : j])
				if err != nil {
					return "", err
				}
				b.WriteString(out)
				i = j - 1
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String(), nil
}

// collectRefs returns the distinct referenced parameter names in
// first-appearance order.
func collectRefs(text, prefix string) []string {
	lead := prefix[0]
	var names []string
	seen := make(map[string]bool)
	inString := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch == '\'' {
			inString = !inString
		}
		if ch == lead && !inString {
			j := i + 1
			for j < len(text) && isParamChar(text[j]) {
				j++
			}
			if j > i+1 {
				name := text[i+1 : j]
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
				i = j - 1
			}
		}
	}
	return names
}

// countMarkers counts bare ? markers outside single-quoted string literals.
func countMarkers(text string) int {
	n := 0
	inString := false
	for i := 0; i < len(text); i++ {
		if text[i] == '\'' {
			inString = !inString
		}
		if text[i] == '?' && !inString {
			n++
		}
	}
	return n
}
