package core

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/coregx/sqlplate/internal/schema"
	"github.com/coregx/sqlplate/internal/util"
)

// ModelQuery performs single-row CRUD for a model struct through generated
// templates: columns and values come from schema reflection, the WHERE clause
// from primary key detection. It is a convenience layer over Prepare, the
// Builder, and the execution methods.
type ModelQuery struct {
	db      *DB
	model   interface{}
	table   string
	exclude []string
}

// Model creates a ModelQuery for a struct or struct pointer. Pass a pointer
// when Insert should backfill a generated key or Get should load into the
// model.
func (db *DB) Model(model interface{}) *ModelQuery {
	return &ModelQuery{
		db:    db,
		model: model,
		table: schema.TableName(model),
	}
}

// Table overrides the table name derived from the model type.
func (mq *ModelQuery) Table(name string) *ModelQuery {
	mq.table = name
	return mq
}

// Exclude removes struct fields (by Go field name) from Insert column lists
// and Update SET clauses. Unknown names are ignored.
func (mq *ModelQuery) Exclude(fields ...string) *ModelQuery {
	mq.exclude = append(mq.exclude, fields...)
	return mq
}

// context builds the placeholder context for the model with the effective
// table name.
func (mq *ModelQuery) context() (*Context, error) {
	return mq.db.ContextFor(mq.model, WithTable(mq.table))
}

// primaryKey locates the model's primary key fields.
func (mq *ModelQuery) primaryKey() (*util.PrimaryKeyInfo, error) {
	return util.FindPrimaryKeyFields(reflect.ValueOf(mq.model))
}

// excludeOptions renders repeated --exclude flags for the given field names.
func excludeOptions(fields []string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(" --exclude ")
		b.WriteString(f)
	}
	return b.String()
}

// appendKeyFilter appends a WHERE clause binding every primary key column.
func appendKeyFilter(b *Builder, pctx *Context, pk *util.PrimaryKeyInfo) {
	d := pctx.Dialect()
	for i, col := range pk.Columns {
		clause := " WHERE "
		if i > 0 {
			clause = " AND "
		}
		b.Append(clause+d.QuoteIdentifier(col)+" = ?", pk.Values[i].Interface())
	}
}

// Insert inserts the model as a new row. A single integer primary key that is
// zero-valued is treated as database-generated: it is dropped from the column
// list and backfilled from LastInsertId when the model is a pointer and the
// driver reports generated keys.
func (mq *ModelQuery) Insert(ctx context.Context) error {
	if mq.table == "" {
		return errors.New("model: table name not specified")
	}

	values, err := schema.FieldValues(mq.model)
	if err != nil {
		return err
	}

	exclude := mq.exclude
	var autoPK *util.PrimaryKeyInfo
	if pk, pkErr := mq.primaryKey(); pkErr == nil && pk.IsSingle() && util.IsPrimaryKeyZero(pk.Values[0]) {
		autoPK = pk
		exclude = append(append([]string{}, exclude...), pk.Fields[0].Name)
	}

	pctx, err := mq.context()
	if err != nil {
		return err
	}

	excl := excludeOptions(exclude)
	tpl, err := mq.db.Prepare("INSERT INTO {{table}} ({{columns"+excl+"}}) VALUES ({{values"+excl+"}})", pctx)
	if err != nil {
		return err
	}

	result, err := mq.db.Exec(ctx, tpl, values)
	if err != nil {
		return err
	}

	if autoPK != nil && result != nil {
		if id, idErr := result.LastInsertId(); idErr == nil && id != 0 {
			_ = util.SetPrimaryKeyValue(autoPK.Values[0], id)
		}
	}
	return nil
}

// Update updates the row matching the model's primary key, setting every
// column except the key columns and any excluded fields.
func (mq *ModelQuery) Update(ctx context.Context) error {
	if mq.table == "" {
		return errors.New("model: table name not specified")
	}

	pk, err := mq.primaryKey()
	if err != nil {
		return err
	}

	values, err := schema.FieldValues(mq.model)
	if err != nil {
		return err
	}

	exclude := append([]string{}, mq.exclude...)
	for _, f := range pk.Fields {
		exclude = append(exclude, f.Name)
	}

	pctx, err := mq.context()
	if err != nil {
		return err
	}

	b := NewContextBuilder(pctx)
	defer b.Close()
	b.AppendTemplate("UPDATE {{table}} SET {{set"+excludeOptions(exclude)+"}}", values)
	appendKeyFilter(b, pctx, pk)

	tpl, err := b.Build()
	if err != nil {
		return err
	}
	_, err = mq.db.Exec(ctx, tpl, nil)
	return err
}

// Delete deletes the row matching the model's primary key.
func (mq *ModelQuery) Delete(ctx context.Context) error {
	if mq.table == "" {
		return errors.New("model: table name not specified")
	}

	pk, err := mq.primaryKey()
	if err != nil {
		return err
	}

	pctx, err := mq.context()
	if err != nil {
		return err
	}

	b := NewContextBuilder(pctx)
	defer b.Close()
	b.AppendTemplate("DELETE FROM {{table}}", nil)
	appendKeyFilter(b, pctx, pk)

	tpl, err := b.Build()
	if err != nil {
		return err
	}
	_, err = mq.db.Exec(ctx, tpl, nil)
	return err
}

// Get loads the row matching the model's primary key into the model, which
// must be a struct pointer. Returns ErrNoRows when the row does not exist.
func (mq *ModelQuery) Get(ctx context.Context) error {
	if mq.table == "" {
		return errors.New("model: table name not specified")
	}

	pk, err := mq.primaryKey()
	if err != nil {
		return err
	}

	pctx, err := mq.context()
	if err != nil {
		return err
	}

	b := NewContextBuilder(pctx)
	defer b.Close()
	b.AppendTemplate("SELECT {{columns}} FROM {{table}}", nil)
	appendKeyFilter(b, pctx, pk)

	tpl, err := b.Build()
	if err != nil {
		return err
	}
	return mq.db.One(ctx, tpl, nil, mq.model)
}
