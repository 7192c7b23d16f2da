// Package schema provides column metadata for entity types: storage names,
// source property names, data-type tags, and nullability, extracted once per
// struct type and cached for reuse by template expansion.
package schema

// DataType tags a column's value kind. The enumeration is closed; renderers
// and output-parameter declarations switch over it exhaustively.
type DataType int

// Supported data-type tags.
const (
	TypeString DataType = iota
	TypeInt
	TypeInt64
	TypeFloat
	TypeBool
	TypeTime
	TypeBytes
	TypeUUID
)

var dataTypeNames = map[DataType]string{
	TypeString: "string",
	TypeInt:    "int",
	TypeInt64:  "int64",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeTime:   "time",
	TypeBytes:  "bytes",
	TypeUUID:   "uuid",
}

// String returns the lowercase tag name.
func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Column describes one entity column. Instances are immutable and shared by
// reference; every context built for the same entity type sees the same slice.
type Column struct {
	// Name is the storage identifier used in generated SQL.
	Name string
	// Property is the source field name, used for exclusion matching.
	Property string
	// Type tags the column's value kind.
	Type DataType
	// Nullable reports whether the column accepts NULL.
	Nullable bool
}
