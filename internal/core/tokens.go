package core

import (
	"fmt"
	"strings"
	"unicode"
)

// token is one {{name --options}} marker found in template text.
type token struct {
	name    string
	rawOpts string
	raw     string // full source text including braces, for deferred tokens
	offset  int    // byte offset of the opening braces
}

// segment is one piece of scanned template text. tok is nil for literal
// segments; literal text passes through expansion byte for byte.
type segment struct {
	text string
	tok  *token
}

// scanSegments splits template text into alternating literal and token
// segments in source order. Tokens do not nest: the first }} closes the
// nearest open {{. An unterminated {{ is a syntax error reporting the byte
// offset of the opening braces.
func scanSegments(s string) ([]segment, error) {
	var segs []segment
	pos := 0
	for {
		rel := strings.Index(s[pos:], "{{")
		if rel < 0 {
			if pos < len(s) {
				segs = append(segs, segment{text: s[pos:]})
			}
			return segs, nil
		}
		open := pos + rel
		if open > pos {
			segs = append(segs, segment{text: s[pos:open]})
		}
		endRel := strings.Index(s[open+2:], "}}")
		if endRel < 0 {
			return nil, fmt.Errorf("%w: unterminated {{ at offset %d", ErrSyntax, open)
		}
		end := open + 2 + endRel + 2
		name, rawOpts := splitToken(s[open+2 : end-2])
		if name == "" {
			return nil, fmt.Errorf("%w: empty placeholder name at offset %d", ErrSyntax, open)
		}
		segs = append(segs, segment{tok: &token{
			name:    name,
			rawOpts: rawOpts,
			raw:     s[open:end],
			offset:  open,
		}})
		pos = end
	}
}

// splitToken splits trimmed token content at the first whitespace run into
// the handler name and the raw options tail.
func splitToken(content string) (name, rawOpts string) {
	content = strings.TrimSpace(content)
	if i := strings.IndexFunc(content, unicode.IsSpace); i >= 0 {
		return content[:i], strings.TrimSpace(content[i+1:])
	}
	return content, ""
}

// optionPair is one parsed --flag value pair.
type optionPair struct {
	flag  string
	value string
}

// optionList holds a token's options in source order. Flags may repeat;
// handlers decide whether repeats are meaningful.
type optionList []optionPair

// parseOptions parses a raw options tail into flag/value pairs. Every option
// is a --flag followed by exactly one whitespace-delimited value.
func parseOptions(tokenName, raw string) (optionList, error) {
	fields := strings.Fields(raw)
	var opts optionList
	for i := 0; i < len(fields); i++ {
		if !strings.HasPrefix(fields[i], "--") {
			return nil, fmt.Errorf("%w: {{%s}}: expected option flag, got %q", ErrBadOption, tokenName, fields[i])
		}
		flag := fields[i][2:]
		if flag == "" {
			return nil, fmt.Errorf("%w: {{%s}}: empty option flag", ErrBadOption, tokenName)
		}
		if i+1 >= len(fields) || strings.HasPrefix(fields[i+1], "--") {
			return nil, fmt.Errorf("%w: {{%s}}: option --%s requires a value", ErrBadOption, tokenName, flag)
		}
		opts = append(opts, optionPair{flag: flag, value: fields[i+1]})
		i++
	}
	return opts, nil
}

// get returns the first value for flag.
func (o optionList) get(flag string) (string, bool) {
	for _, p := range o {
		if p.flag == flag {
			return p.value, true
		}
	}
	return "", false
}

// all returns every value recorded for flag, in source order.
func (o optionList) all(flag string) []string {
	var values []string
	for _, p := range o {
		if p.flag == flag {
			values = append(values, p.value)
		}
	}
	return values
}

// allow verifies that every parsed flag is one of the given names.
func (o optionList) allow(tokenName string, flags ...string) error {
	for _, p := range o {
		ok := false
		for _, f := range flags {
			if p.flag == f {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: {{%s}} does not accept --%s", ErrBadOption, tokenName, p.flag)
		}
	}
	return nil
}

// require returns the value of a mandatory flag.
func (o optionList) require(tokenName, flag string) (string, error) {
	value, ok := o.get(flag)
	if !ok {
		return "", fmt.Errorf("%w: {{%s}} requires --%s", ErrBadOption, tokenName, flag)
	}
	return value, nil
}
