package projection

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/schema"
)

var (
	errMissingColumn = errors.New("column missing from row")
	errNullValue     = errors.New("NULL into non-nullable field")
)

// fieldPlan binds one schema field to a struct field.
type fieldPlan struct {
	field schema.Field
	index int
}

type structPlan struct {
	fields []fieldPlan
}

type planKey struct {
	typ   reflect.Type
	table *schema.Table
}

var plans sync.Map // planKey -> *structPlan

// planFor matches the exported fields of struct type typ to t's fields.
//
// A `db:"name"` tag names the column; "-" skips the field. Untagged fields
// match a column whose name equals the field name ignoring case and
// underscores, so PersonID matches person_id. Columns without a struct
// field are not decoded.
func planFor(typ reflect.Type, t *schema.Table) (*structPlan, error) {
	key := planKey{typ: typ, table: t}
	if p, ok := plans.Load(key); ok {
		return p.(*structPlan), nil
	}

	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("record type %s is not a struct", typ)
	}

	plan := &structPlan{}
	used := make(map[string]bool)
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		if tag == "-" {
			continue
		}

		f, ok := matchField(t, sf.Name, tag)
		if !ok {
			if tag != "" {
				return nil, errs.NewColumnNotFound(t.QualifiedName(), tag)
			}
			continue
		}
		if used[f.Name] {
			return nil, fmt.Errorf("record type %s maps %s more than once", typ, t.Key(f.Name))
		}
		used[f.Name] = true
		plan.fields = append(plan.fields, fieldPlan{field: f, index: i})
	}

	p, _ := plans.LoadOrStore(key, plan)
	return p.(*structPlan), nil
}

func matchField(t *schema.Table, goName, tag string) (schema.Field, bool) {
	if tag != "" {
		return t.Field(tag)
	}
	for _, f := range t.Fields {
		if strings.EqualFold(strings.ReplaceAll(f.Name, "_", ""), goName) {
			return f, true
		}
	}
	return schema.Field{}, false
}

// Struct decodes t's columns into a T, which must be a struct type.
//
// Pointer fields are optional and stay nil for NULL. A NULL into a
// non-pointer field leaves the zero value when the schema field is
// nullable and fails otherwise. Fields implementing sql.Scanner receive the
// converted column value.
func Struct[T any](t *schema.Table) Decoder[T] {
	plan, planErr := planFor(reflect.TypeFor[T](), t)

	return func(r Row) (T, error) {
		var out T
		if planErr != nil {
			return out, planErr
		}
		rv := reflect.ValueOf(&out).Elem()
		for _, fp := range plan.fields {
			v, err := column(r, t, fp.field)
			if err != nil {
				return out, err
			}
			if err := assign(rv.Field(fp.index), v, fp.field.Nullable); err != nil {
				return out, errs.NewDecodeError(t.Key(fp.field.Name), err)
			}
		}
		return out, nil
	}
}

func assign(dst reflect.Value, v any, nullable bool) error {
	if v != nil && reflect.TypeOf(v).AssignableTo(dst.Type()) {
		dst.Set(reflect.ValueOf(v))
		return nil
	}
	if s, ok := dst.Addr().Interface().(sql.Scanner); ok {
		return s.Scan(v)
	}
	if v == nil {
		if dst.Kind() == reflect.Pointer || nullable {
			dst.SetZero()
			return nil
		}
		return errNullValue
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := assign(elem.Elem(), v, nullable); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	return convertInto(dst, reflect.ValueOf(v))
}

// convertInto handles conversions between related kinds, such as int64
// into an int32 field or string into a named string type.
func convertInto(dst, src reflect.Value) error {
	switch {
	case isInt(dst.Kind()) && src.CanInt():
		n := src.Int()
		if dst.OverflowInt(n) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
	case isUint(dst.Kind()) && src.CanInt():
		n := src.Int()
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))
	case isFloat(dst.Kind()) && src.CanFloat():
		dst.SetFloat(src.Float())
	case isFloat(dst.Kind()) && src.CanInt():
		dst.SetFloat(float64(src.Int()))
	case dst.Kind() == reflect.String && src.Kind() == reflect.String:
		dst.SetString(src.String())
	case dst.Kind() == reflect.Bool && src.Kind() == reflect.Bool:
		dst.SetBool(src.Bool())
	case dst.Kind() == reflect.Slice && dst.Type().Elem().Kind() == reflect.Uint8 && src.Kind() == reflect.Slice:
		dst.SetBytes(src.Bytes())
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}
	return nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// Values reads a record back into a map keyed by field name, the input
// shape of the primary-key statements. rec is a struct or a pointer to
// one. Nil pointer fields become nil; driver.Valuer fields are resolved.
func Values(t *schema.Table, rec any) (map[string]any, error) {
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("record for %s is nil", t.QualifiedName())
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, fmt.Errorf("record for %s is nil", t.QualifiedName())
	}

	plan, err := planFor(rv.Type(), t)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(plan.fields))
	for _, fp := range plan.fields {
		fv := rv.Field(fp.index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				out[fp.field.Name] = nil
				continue
			}
		}
		v := fv.Interface()
		if valuer, ok := v.(driver.Valuer); ok {
			dv, err := valuer.Value()
			if err != nil {
				return nil, fmt.Errorf("value of %s: %w", t.Key(fp.field.Name), err)
			}
			out[fp.field.Name] = dv
			continue
		}
		if fv.Kind() == reflect.Pointer {
			v = fv.Elem().Interface()
		}
		out[fp.field.Name] = v
	}
	return out, nil
}
