package query

import (
	"context"

	"github.com/roach88/joinery/internal/conn"
	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/projection"
	"github.com/roach88/joinery/internal/stream"
)

// Execute compiles the query and submits it to q.
func (c *Core) Execute(ctx context.Context, q conn.Querier) (conn.Cursor, error) {
	sql, params := c.SQL()
	c.logger.DebugContext(ctx, "execute query",
		"root", c.root.QualifiedName(),
		"tables", len(c.tables),
		"params", len(params),
		"raw", c.raw,
	)

	cur, err := q.Query(ctx, sql, params)
	if err != nil {
		return nil, errs.WrapDriver("execute query", err)
	}
	return cur, nil
}

// Stream executes c and decodes rows lazily with dec. The caller must
// Close the stream, or drain it, to release the cursor.
func Stream[T any](ctx context.Context, c *Core, q conn.Querier, dec projection.Decoder[T]) (*stream.RowStream[T], error) {
	cur, err := c.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	return stream.New(cur, dec), nil
}

// All executes c and decodes every row with dec.
func All[T any](ctx context.Context, c *Core, q conn.Querier, dec projection.Decoder[T]) ([]T, error) {
	s, err := Stream(ctx, c, q, dec)
	if err != nil {
		return nil, err
	}
	return s.Collect()
}

// One executes c and decodes the first row. ok is false when the query
// returned no rows.
func One[T any](ctx context.Context, c *Core, q conn.Querier, dec projection.Decoder[T]) (T, bool, error) {
	var zero T
	s, err := Stream(ctx, c, q, dec)
	if err != nil {
		return zero, false, err
	}
	defer s.Close()

	if !s.Next() {
		return zero, false, s.Err()
	}
	return s.Value(), true, nil
}

// Maps executes c and returns, per row, one map per registered table in
// join order.
func (c *Core) Maps(ctx context.Context, q conn.Querier) ([][]map[string]any, error) {
	return All(ctx, c, q, projection.Maps(c.tables))
}

// Frames executes c and accumulates every row into one columnar frame per
// registered table, in join order.
func (c *Core) Frames(ctx context.Context, q conn.Querier) ([]*projection.Frame, error) {
	frames := make([]*projection.Frame, len(c.tables))
	for i, t := range c.tables {
		frames[i] = projection.NewFrame(t)
	}

	s, err := Stream[projection.Row](ctx, c, q, func(r projection.Row) (projection.Row, error) { return r, nil })
	if err != nil {
		return nil, err
	}
	defer s.Close()

	for s.Next() {
		row := s.Value()
		for _, f := range frames {
			if err := f.Append(row); err != nil {
				return nil, err
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}
