// Package sqlplate provides a dialect-aware SQL template engine for Go with
// support for SQLite, SQL Server, MySQL, PostgreSQL, Oracle, and DB2. Templates
// carry placeholders like {{table}}, {{columns}}, and {{where --param w}} that
// expand into dialect-correct SQL at preparation or render time, and bound
// statements execute with reflection-based struct scanning, prepared statement
// caching, and OpenTelemetry tracing out of the box.
package sqlplate

import (
	"github.com/coregx/sqlplate/internal/cache"
	"github.com/coregx/sqlplate/internal/core"
	"github.com/coregx/sqlplate/internal/dialects"
	"github.com/coregx/sqlplate/internal/logger"
	"github.com/coregx/sqlplate/internal/schema"
	"github.com/coregx/sqlplate/internal/tracer"
)

type (
	// DB pairs a database handle with its dialect, statement and template
	// caches, logging, and tracing.
	DB = core.DB
	// Option is a functional option for configuring DB.
	Option = core.Option
	// Template is SQL text with every static placeholder resolved.
	Template = core.Template
	// Params holds named runtime values for rendering and binding.
	Params = core.Params
	// Param is one named binding accumulated by a Builder.
	Param = core.Param
	// Builder assembles parameterized SQL from text fragments, templates,
	// and subqueries.
	Builder = core.Builder
	// Context supplies the dialect, table, columns, and variables that
	// placeholder expansion consumes.
	Context = core.Context
	// ContextOption is a functional option for configuring Context.
	ContextOption = core.ContextOption
	// Vars is a static name-to-fragment variable table for {{var}} tokens.
	Vars = core.Vars
	// VarProvider resolves {{var}} names against an application instance.
	VarProvider = core.VarProvider
	// ModelQuery performs single-row CRUD for a model struct.
	ModelQuery = core.ModelQuery
	// NullStringMap is a row scanned as column-to-nullable-string pairs.
	NullStringMap = core.NullStringMap
	// QueryEvent contains information about an executed query.
	QueryEvent = core.QueryEvent
	// QueryHook is a callback invoked after each query execution.
	QueryHook = core.QueryHook
	// HealthStatus is a snapshot of the background health checker.
	HealthStatus = core.HealthStatus
	// CacheStats reports size and hit/miss counters for one cache.
	CacheStats = cache.Stats

	// Column describes one entity column used for placeholder expansion.
	Column = schema.Column
	// DataType tags a column's value kind.
	DataType = schema.DataType
	// TableModel overrides the table name derived from a struct type.
	TableModel = schema.TableModel

	// Logger is the structured logging interface queries are logged through.
	Logger = logger.Logger
	// Tracer spans query execution for distributed tracing.
	Tracer = tracer.Tracer

	// Dialect describes one database's lexical conventions and SQL helpers.
	Dialect = dialects.Dialect

	// Expression represents a database expression for building complex WHERE clauses.
	Expression = core.Expression
	// HashExp represents a hash-based expression using column-value pairs.
	HashExp = core.HashExp
	// LikeExp represents a LIKE expression with automatic escaping.
	LikeExp = core.LikeExp
)

// Column data-type tags.
const (
	TypeString = schema.TypeString
	TypeInt    = schema.TypeInt
	TypeInt64  = schema.TypeInt64
	TypeFloat  = schema.TypeFloat
	TypeBool   = schema.TypeBool
	TypeTime   = schema.TypeTime
	TypeBytes  = schema.TypeBytes
	TypeUUID   = schema.TypeUUID
)

// Re-export core functions.
var (
	Open   = core.Open
	WrapDB = core.WrapDB

	Prepare = core.Prepare
	Render  = core.Render

	NewContext        = core.NewContext
	NewBuilder        = core.NewBuilder
	NewBuilderSize    = core.NewBuilderSize
	NewContextBuilder = core.NewContextBuilder

	// GetDialect looks up a registered dialect by driver name.
	GetDialect = dialects.GetDialect

	// DB options
	WithLogger                = core.WithLogger
	WithTracer                = core.WithTracer
	WithQueryHook             = core.WithQueryHook
	WithStmtCacheCapacity     = core.WithStmtCacheCapacity
	WithTemplateCacheCapacity = core.WithTemplateCacheCapacity
	WithSanitizerFields       = core.WithSanitizerFields
	WithHealthCheck           = core.WithHealthCheck

	// Context options
	WithVars        = core.WithVars
	WithVarProvider = core.WithVarProvider
	WithTable       = core.WithTable

	// Logging and tracing adapters
	NewSlogAdapter = logger.NewSlogAdapter
	NewOtelTracer  = tracer.NewOtelTracer

	// Expression builders
	NewExp         = core.NewExp
	Eq             = core.Eq
	NotEq          = core.NotEq
	GreaterThan    = core.GreaterThan
	LessThan       = core.LessThan
	GreaterOrEqual = core.GreaterOrEqual
	LessOrEqual    = core.LessOrEqual
	In             = core.In
	NotIn          = core.NotIn
	Between        = core.Between
	NotBetween     = core.NotBetween
	Like           = core.Like
	NotLike        = core.NotLike
	OrLike         = core.OrLike
	OrNotLike      = core.OrNotLike
	And            = core.And
	Or             = core.Or
	Not            = core.Not
	Exists         = core.Exists
	NotExists      = core.NotExists
	Assign         = core.Assign
)

// Sentinel errors matched with errors.Is.
var (
	ErrSyntax             = core.ErrSyntax
	ErrUnknownPlaceholder = core.ErrUnknownPlaceholder
	ErrBadOption          = core.ErrBadOption
	ErrMissingParameter   = core.ErrMissingParameter
	ErrBadParamValue      = core.ErrBadParamValue
	ErrMissingVarProvider = core.ErrMissingVarProvider
	ErrUnknownVariable    = core.ErrUnknownVariable
	ErrNoRows             = core.ErrNoRows
	ErrInvalidModelType   = core.ErrInvalidModelType
)
