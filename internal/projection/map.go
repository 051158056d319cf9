package projection

import (
	"github.com/roach88/joinery/internal/schema"
)

// Map decodes t's columns into a map keyed by bare field name. NULL
// columns are present with a nil value.
func Map(t *schema.Table) Decoder[map[string]any] {
	return func(r Row) (map[string]any, error) {
		out := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			v, err := column(r, t, f)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	}
}

// Maps decodes one map per table from the same row, in table order.
func Maps(tables []*schema.Table) Decoder[[]map[string]any] {
	decs := make([]Decoder[map[string]any], len(tables))
	for i, t := range tables {
		decs[i] = Map(t)
	}
	return func(r Row) ([]map[string]any, error) {
		out := make([]map[string]any, len(decs))
		for i, dec := range decs {
			m, err := dec(r)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return out, nil
	}
}
