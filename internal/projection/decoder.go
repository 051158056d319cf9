package projection

import (
	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/schema"
)

// Row is the read side of one result row.
type Row interface {
	// Value returns the value of a qualified column. A NULL column
	// reports (nil, true); a column absent from the row reports false.
	Value(key string) (any, bool)
}

// Decoder converts one row into a T.
type Decoder[T any] func(Row) (T, error)

// Any erases a decoder's result type, for use with Tuple.
func Any[T any](dec Decoder[T]) Decoder[any] {
	return func(r Row) (any, error) {
		v, err := dec(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Tuple applies every decoder to the same row and returns the results in
// decoder order.
func Tuple(decs ...Decoder[any]) Decoder[[]any] {
	return func(r Row) ([]any, error) {
		out := make([]any, len(decs))
		for i, dec := range decs {
			v, err := dec(r)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// Optional wraps dec for the right side of an outer join: when every
// column of t is NULL the result is nil instead of a decoded record.
func Optional[T any](dec Decoder[T], t *schema.Table) Decoder[*T] {
	return func(r Row) (*T, error) {
		allNull := true
		for _, f := range t.Fields {
			key := t.Key(f.Name)
			v, ok := r.Value(key)
			if !ok {
				return nil, errs.NewDecodeError(key, errMissingColumn)
			}
			if v != nil {
				allNull = false
				break
			}
		}
		if allNull {
			return nil, nil
		}
		v, err := dec(r)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
}

// column reads and converts one field of t.
func column(r Row, t *schema.Table, f schema.Field) (any, error) {
	key := t.Key(f.Name)
	raw, ok := r.Value(key)
	if !ok {
		return nil, errs.NewDecodeError(key, errMissingColumn)
	}
	v, err := f.Kind.Convert(raw)
	if err != nil {
		return nil, errs.NewDecodeError(key, err)
	}
	return v, nil
}
