package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/schema"
)

// Statement is SQL text with the parameters backing its placeholders.
type Statement struct {
	SQL    string
	Params []any
}

// Insert renders "INSERT INTO t (a,b) values(@p1,@p2)" over every field in
// declaration order. Fields absent from values are bound as NULL.
func Insert(t *schema.Table, values map[string]any) (Statement, error) {
	return insert(t, values, t.FieldNames())
}

// InsertIgnorePK is Insert without the primary key column, for tables whose
// key is generated by the database.
func InsertIgnorePK(t *schema.Table, values map[string]any) (Statement, error) {
	pk, err := t.PrimaryKey()
	if err != nil {
		return Statement{}, err
	}
	var fields []string
	for _, name := range t.FieldNames() {
		if name != pk {
			fields = append(fields, name)
		}
	}
	return insert(t, values, fields)
}

func insert(t *schema.Table, values map[string]any, fields []string) (Statement, error) {
	if err := checkFields(t, values); err != nil {
		return Statement{}, err
	}
	var b Binder
	placeholders := make([]string, len(fields))
	for i, name := range fields {
		placeholders[i] = b.Bind(values[name])
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) values(%s)",
		t.QualifiedName(), strings.Join(fields, ","), strings.Join(placeholders, ","))
	return Statement{SQL: sql, Params: b.Params()}, nil
}

// Update renders "UPDATE t SET a = @p1, b = @p2 WHERE pk = @pN". Only the
// non-key fields present in values are written, in declaration order; the
// key value comes last. A present nil value sets NULL.
func Update(t *schema.Table, values map[string]any) (Statement, error) {
	pk, key, err := primaryKeyValue(t, values)
	if err != nil {
		return Statement{}, err
	}
	if err := checkFields(t, values); err != nil {
		return Statement{}, err
	}

	var b Binder
	var sets []string
	for _, name := range t.FieldNames() {
		v, ok := values[name]
		if name == pk || !ok {
			continue
		}
		sets = append(sets, name+" = "+b.Bind(v))
	}
	if len(sets) == 0 {
		return Statement{}, fmt.Errorf("update %s: no fields to set", t.QualifiedName())
	}
	where := b.Bind(key)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		t.QualifiedName(), strings.Join(sets, ", "), pk, where)
	return Statement{SQL: sql, Params: b.Params()}, nil
}

// Delete renders "DELETE FROM t WHERE pk = @p1".
func Delete(t *schema.Table, values map[string]any) (Statement, error) {
	pk, key, err := primaryKeyValue(t, values)
	if err != nil {
		return Statement{}, err
	}
	var b Binder
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", t.QualifiedName(), pk, b.Bind(key))
	return Statement{SQL: sql, Params: b.Params()}, nil
}

func primaryKeyValue(t *schema.Table, values map[string]any) (string, any, error) {
	pk, err := t.PrimaryKey()
	if err != nil {
		return "", nil, err
	}
	key, ok := values[pk]
	if !ok || key == nil {
		return "", nil, errs.NewMissingPrimaryKey(t.QualifiedName(), "no value for "+pk)
	}
	return pk, key, nil
}

func checkFields(t *schema.Table, values map[string]any) error {
	for name := range values {
		if _, ok := t.Field(name); !ok {
			return errs.NewColumnNotFound(t.QualifiedName(), name)
		}
	}
	return nil
}
