package core

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/coregx/sqlplate/internal/schema"
)

// scanRow scans the current row into dest, a pointer to a struct. Result
// columns are matched case-insensitively against the schema column names, so
// drivers that fold identifier case (Oracle, DB2) still map correctly.
// Columns with no matching field are discarded.
func scanRow(rows *sql.Rows, dest interface{}) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr {
		return fmt.Errorf("scan: dest must be pointer to struct, got %T", dest)
	}

	destValue = destValue.Elem()
	if destValue.Kind() != reflect.Struct {
		return fmt.Errorf("scan: dest must be pointer to struct, got pointer to %s", destValue.Kind())
	}

	cols, indexes, err := schema.PlanFor(destValue.Type())
	if err != nil {
		return err
	}

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("scan: columns: %w", err)
	}

	if err := rows.Scan(scanDestinations(destValue, cols, indexes, columns)...); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	return nil
}

// scanRows scans every remaining row into dest, a pointer to a slice of
// structs or struct pointers, and returns the number of rows appended.
func scanRows(rows *sql.Rows, dest interface{}) (int64, error) {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr {
		return 0, fmt.Errorf("scan: dest must be pointer to slice, got %T", dest)
	}

	sliceValue := destValue.Elem()
	if sliceValue.Kind() != reflect.Slice {
		return 0, fmt.Errorf("scan: dest must be pointer to slice, got pointer to %s", sliceValue.Kind())
	}

	elemType := sliceValue.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	if isPtr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return 0, fmt.Errorf("scan: slice element must be struct or *struct, got %s", elemType.Kind())
	}

	cols, indexes, err := schema.PlanFor(elemType)
	if err != nil {
		return 0, err
	}

	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("scan: columns: %w", err)
	}

	var count int64
	for rows.Next() {
		elemValue := reflect.New(elemType).Elem()
		if err := rows.Scan(scanDestinations(elemValue, cols, indexes, columns)...); err != nil {
			return count, fmt.Errorf("scan: %w", err)
		}

		if isPtr {
			sliceValue.Set(reflect.Append(sliceValue, elemValue.Addr()))
		} else {
			sliceValue.Set(reflect.Append(sliceValue, elemValue))
		}
		count++
	}

	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("scan: rows: %w", err)
	}
	return count, nil
}

// scanDestinations builds one scan target per result column: the addressed
// struct field when the column maps to one, a throwaway otherwise.
func scanDestinations(structValue reflect.Value, cols []schema.Column, indexes [][]int, columns []string) []interface{} {
	fieldIndex := make(map[string][]int, len(cols))
	for i, col := range cols {
		fieldIndex[strings.ToLower(col.Name)] = indexes[i]
	}

	dests := make([]interface{}, len(columns))
	for i, name := range columns {
		if idx, ok := fieldIndex[strings.ToLower(name)]; ok {
			dests[i] = structValue.FieldByIndex(idx).Addr().Interface()
		} else {
			var dummy interface{}
			dests[i] = &dummy
		}
	}
	return dests
}

// scanMapRow scans the current row into a NullStringMap. All values are
// scanned as sql.NullString regardless of the actual column type.
func scanMapRow(rows *sql.Rows, dest *NullStringMap) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("scan: columns: %w", err)
	}

	values := make([]sql.NullString, len(columns))
	dests := make([]interface{}, len(columns))
	for i := range values {
		dests[i] = &values[i]
	}

	if err := rows.Scan(dests...); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	*dest = make(NullStringMap, len(columns))
	for i, col := range columns {
		(*dest)[col] = values[i]
	}
	return nil
}

// scanMapRows scans every remaining row into a slice of NullStringMap and
// returns the number of rows appended.
func scanMapRows(rows *sql.Rows, dest *[]NullStringMap) (int64, error) {
	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("scan: columns: %w", err)
	}

	var count int64
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		dests := make([]interface{}, len(columns))
		for i := range values {
			dests[i] = &values[i]
		}

		if err := rows.Scan(dests...); err != nil {
			return count, fmt.Errorf("scan: %w", err)
		}

		rowMap := make(NullStringMap, len(columns))
		for i, col := range columns {
			rowMap[col] = values[i]
		}
		*dest = append(*dest, rowMap)
		count++
	}

	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("scan: rows: %w", err)
	}
	return count, nil
}
