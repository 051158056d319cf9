package projection

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/joinery/internal/schema"
)

// Series is one column of a Frame.
type Series struct {
	Name   string
	Kind   schema.Kind
	Values []any
}

// Frame holds one table's rows column by column.
type Frame struct {
	table  *schema.Table
	Series []Series
}

// NewFrame creates an empty frame with one series per field of t.
func NewFrame(t *schema.Table) *Frame {
	f := &Frame{table: t, Series: make([]Series, len(t.Fields))}
	for i, field := range t.Fields {
		f.Series[i] = Series{Name: field.Name, Kind: field.Kind}
	}
	return f
}

// Table returns the table the frame was built for.
func (f *Frame) Table() *schema.Table {
	return f.table
}

// Len returns the number of rows appended.
func (f *Frame) Len() int {
	if len(f.Series) == 0 {
		return 0
	}
	return len(f.Series[0].Values)
}

// Append decodes t's columns from r and adds them as a new row. On error
// the frame is unchanged.
func (f *Frame) Append(r Row) error {
	values := make([]any, len(f.table.Fields))
	for i, field := range f.table.Fields {
		v, err := column(r, f.table, field)
		if err != nil {
			return err
		}
		values[i] = v
	}
	for i, v := range values {
		f.Series[i].Values = append(f.Series[i].Values, v)
	}
	return nil
}

// Column returns the series for field name.
func (f *Frame) Column(name string) (Series, bool) {
	for _, s := range f.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// wireFrame is the msgpack layout of a Frame.
type wireFrame struct {
	Table   string       `msgpack:"table"`
	Rows    int          `msgpack:"rows"`
	Columns []wireSeries `msgpack:"columns"`
}

type wireSeries struct {
	Name   string `msgpack:"name"`
	Kind   string `msgpack:"kind"`
	Values []any  `msgpack:"values"`
}

// EncodeMsgpack writes the frame as a msgpack map with table, rows and
// columns keys. UUIDs are written as strings and times as msgpack
// timestamps.
func (f *Frame) EncodeMsgpack(w io.Writer) error {
	wire := wireFrame{
		Table:   f.table.QualifiedName(),
		Rows:    f.Len(),
		Columns: make([]wireSeries, len(f.Series)),
	}
	for i, s := range f.Series {
		values := make([]any, len(s.Values))
		for j, v := range s.Values {
			values[j] = wireValue(v)
		}
		wire.Columns[i] = wireSeries{Name: s.Name, Kind: string(s.Kind), Values: values}
	}

	enc := msgpack.NewEncoder(w)
	if err := enc.Encode(wire); err != nil {
		return fmt.Errorf("encode frame %s: %w", wire.Table, err)
	}
	return nil
}

func wireValue(v any) any {
	switch val := v.(type) {
	case uuid.UUID:
		return val.String()
	case time.Time:
		return val.UTC()
	default:
		return v
	}
}
