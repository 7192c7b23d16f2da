package schema

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/inflect"
	"github.com/google/uuid"
)

// TableModel is implemented by entity types that override the table name
// derived from the type name.
type TableModel interface {
	TableName() string
}

// TableName returns the storage table name for a model: the TableModel
// override if implemented, otherwise the snake_case plural of the type name
// (User -> users, OrderItem -> order_items).
func TableName(model interface{}) string {
	if tm, ok := model.(TableModel); ok {
		return tm.TableName()
	}

	t := reflect.TypeOf(model)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return inflect.Pluralize(inflect.Underscore(t.Name()))
}

// leafType maps a non-recursive struct or slice type straight to a column tag.
type leafType struct {
	dt       DataType
	nullable bool
}

var leafTypes = map[reflect.Type]leafType{
	reflect.TypeOf(time.Time{}):       {TypeTime, false},
	reflect.TypeOf([]byte(nil)):       {TypeBytes, false},
	reflect.TypeOf(uuid.UUID{}):       {TypeUUID, false},
	reflect.TypeOf(uuid.NullUUID{}):   {TypeUUID, true},
	reflect.TypeOf(sql.NullString{}):  {TypeString, true},
	reflect.TypeOf(sql.NullInt16{}):   {TypeInt, true},
	reflect.TypeOf(sql.NullInt32{}):   {TypeInt, true},
	reflect.TypeOf(sql.NullInt64{}):   {TypeInt64, true},
	reflect.TypeOf(sql.NullFloat64{}): {TypeFloat, true},
	reflect.TypeOf(sql.NullBool{}):    {TypeBool, true},
	reflect.TypeOf(sql.NullTime{}):    {TypeTime, true},
}

// typeInfo is the cached extraction plan for one struct type: the column
// metadata plus the field index path behind each column.
type typeInfo struct {
	cols    []Column
	indexes [][]int
}

// registry caches the extraction plan per struct type.
type registry struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*typeInfo
}

var globalRegistry = &registry{cache: make(map[reflect.Type]*typeInfo)}

// Columns returns the ordered column metadata for a struct type or pointer
// to struct. The extraction runs once per distinct type; later calls return
// the cached slice, which callers must treat as read-only.
func Columns(model interface{}) ([]Column, error) {
	info, _, err := infoFor(model)
	if err != nil {
		return nil, err
	}
	return info.cols, nil
}

// FieldValues extracts a column-name to field-value map from a struct or
// pointer to struct, using the same cached plan as Columns so parameter keys
// always line up with generated column names.
func FieldValues(model interface{}) (map[string]interface{}, error) {
	info, v, err := infoFor(model)
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{}, len(info.cols))
	for i, col := range info.cols {
		values[col.Name] = v.FieldByIndex(info.indexes[i]).Interface()
	}
	return values, nil
}

// PlanFor returns the cached column metadata and field index paths for a
// struct type. Row scanners use the index paths to address the field behind
// each column when mapping result sets back onto models.
func PlanFor(t reflect.Type) ([]Column, [][]int, error) {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("schema: expected struct, got %v", t)
	}

	info, err := globalRegistry.infoFor(t)
	if err != nil {
		return nil, nil, err
	}
	return info.cols, info.indexes, nil
}

// infoFor resolves the cached plan and the dereferenced struct value.
func infoFor(model interface{}) (*typeInfo, reflect.Value, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, reflect.Value{}, fmt.Errorf("schema: nil model")
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, reflect.Value{}, fmt.Errorf("schema: nil model")
	}
	if v.Kind() != reflect.Struct {
		return nil, reflect.Value{}, fmt.Errorf("schema: expected struct, got %s", v.Kind())
	}

	info, err := globalRegistry.infoFor(v.Type())
	if err != nil {
		return nil, reflect.Value{}, err
	}
	return info, v, nil
}

func (r *registry) infoFor(t reflect.Type) (*typeInfo, error) {
	// Fast path: check cache with read lock
	r.mu.RLock()
	info, ok := r.cache[t]
	r.mu.RUnlock()
	if ok {
		return info, nil
	}

	// Slow path: build with write lock
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if info, ok := r.cache[t]; ok {
		return info, nil
	}

	info = &typeInfo{}
	if err := buildTypeInfo(t, nil, info); err != nil {
		return nil, err
	}
	r.cache[t] = info
	return info, nil
}

// buildTypeInfo extracts column metadata from struct fields in declaration
// order. Embedded structs are flattened; db:"-" and unexported fields are
// skipped.
func buildTypeInfo(t reflect.Type, index []int, info *typeInfo) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if !field.IsExported() {
			continue
		}

		fieldIndex := append(append([]int{}, index...), i)

		// Recurse into embedded structs that are not themselves column
		// value types (time.Time, uuid.UUID, sql.Null*).
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if _, leaf := leafTypes[field.Type]; !leaf {
				if err := buildTypeInfo(field.Type, fieldIndex, info); err != nil {
					return err
				}
				continue
			}
		}

		name := columnName(field)
		if name == "" {
			continue
		}

		dt, nullable := dataTypeOf(field.Type)
		info.cols = append(info.cols, Column{
			Name:     name,
			Property: field.Name,
			Type:     dt,
			Nullable: nullable,
		})
		info.indexes = append(info.indexes, fieldIndex)
	}

	return nil
}

// columnName resolves the storage name from the db tag, falling back to the
// snake_case field name. Returns "" for fields tagged db:"-".
func columnName(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("db")
	if !ok {
		return inflect.Underscore(field.Name)
	}

	name := strings.TrimSpace(strings.Split(tag, ",")[0])
	switch name {
	case "-":
		return ""
	case "", "pk":
		// db:"pk" marks the field as primary key without naming the column.
		return inflect.Underscore(field.Name)
	}
	return name
}

// dataTypeOf maps a Go type to a column tag. Pointers map to their element
// type with Nullable set. Unrecognized kinds fall back to TypeString.
func dataTypeOf(t reflect.Type) (DataType, bool) {
	if t.Kind() == reflect.Ptr {
		dt, _ := dataTypeOf(t.Elem())
		return dt, true
	}

	if leaf, ok := leafTypes[t]; ok {
		return leaf.dt, leaf.nullable
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return TypeInt, false
	case reflect.Int64, reflect.Uint, reflect.Uint64:
		return TypeInt64, false
	case reflect.Float32, reflect.Float64:
		return TypeFloat, false
	case reflect.Bool:
		return TypeBool, false
	case reflect.String:
		return TypeString, false
	default:
		return TypeString, false
	}
}
