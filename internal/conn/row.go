package conn

import "slices"

// Row is one data row keyed by result column name.
type Row struct {
	columns []string
	values  []any
	index   map[string]int
}

// NewRow builds a Row. Byte slices are copied so the row outlives the
// driver's buffers. When a column name repeats, the first one wins.
func NewRow(columns []string, values []any) *Row {
	r := &Row{
		columns: slices.Clone(columns),
		values:  make([]any, len(values)),
		index:   make(map[string]int, len(columns)),
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			v = slices.Clone(b)
		}
		r.values[i] = v
	}
	for i, c := range columns {
		if _, dup := r.index[c]; !dup {
			r.index[c] = i
		}
	}
	return r
}

// Value returns the value for column key. A NULL column reports (nil, true).
func (r *Row) Value(key string) (any, bool) {
	i, ok := r.index[key]
	if !ok || i >= len(r.values) {
		return nil, false
	}
	return r.values[i], true
}

// Columns returns the column names in result order.
func (r *Row) Columns() []string {
	return slices.Clone(r.columns)
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.columns)
}
