package core

import (
	"database/sql"
	"errors"
)

// Predefined errors returned by template preparation, rendering, and binding.
// Callers match them with errors.Is; messages carry the offending token,
// option, or parameter key.
var (
	// ErrSyntax is returned for malformed templates: an unterminated {{ or an
	// empty placeholder name.
	ErrSyntax = errors.New("template syntax error")
	// ErrUnknownPlaceholder is returned when a token names no registered
	// placeholder handler.
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	// ErrBadOption is returned when a token's options cannot be parsed, an
	// option is not recognized by its handler, or a required option is absent.
	ErrBadOption = errors.New("bad placeholder option")
	// ErrMissingParameter is returned when a dynamic token is rendered without
	// its runtime key present in the parameter map.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrBadParamValue is returned when a runtime value is present but has no
	// usable shape for its handler.
	ErrBadParamValue = errors.New("bad parameter value")
	// ErrMissingVarProvider is returned when a {{var}} token is used against a
	// context that has no variable resolver configured.
	ErrMissingVarProvider = errors.New("no VarProvider configured")
	// ErrUnknownVariable is returned when the variable resolver does not
	// recognize a requested name.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrNoRows is returned when a query that expects a row returns none.
	// It aliases database/sql.ErrNoRows so errors.Is matches either sentinel.
	ErrNoRows = sql.ErrNoRows
	// ErrInvalidModelType is returned when an invalid model type is provided.
	ErrInvalidModelType = errors.New("invalid model type")
)
