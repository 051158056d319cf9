package testutil

import (
	"context"
	"slices"

	"github.com/roach88/joinery/internal/conn"
)

// ScriptedCursor replays a fixed list of items.
type ScriptedCursor struct {
	Items []conn.Item

	// FailAt, when positive, makes the FailAt-th call to Next return Err.
	FailAt int
	Err    error

	calls  int
	pos    int
	Closed bool
}

// Rows builds a cursor with one metadata marker followed by one row per
// value list, all over the same columns.
func Rows(columns []string, rows ...[]any) *ScriptedCursor {
	items := []conn.Item{{Metadata: &conn.Metadata{Columns: slices.Clone(columns)}}}
	for _, values := range rows {
		items = append(items, conn.Item{Row: conn.NewRow(columns, values)})
	}
	return &ScriptedCursor{Items: items}
}

// Next implements conn.Cursor.
func (c *ScriptedCursor) Next() (conn.Item, bool, error) {
	c.calls++
	if c.FailAt > 0 && c.calls == c.FailAt {
		return conn.Item{}, false, c.Err
	}
	if c.Closed || c.pos >= len(c.Items) {
		return conn.Item{}, false, nil
	}
	item := c.Items[c.pos]
	c.pos++
	return item, true, nil
}

// Close implements conn.Cursor.
func (c *ScriptedCursor) Close() error {
	c.Closed = true
	return nil
}

// Call is one statement received by a ScriptedQuerier.
type Call struct {
	SQL    string
	Params []any
}

// ScriptedQuerier records statements and answers them from scripts.
type ScriptedQuerier struct {
	Cursors  []*ScriptedCursor // returned by Query, in order
	Affected int64             // returned by Exec
	Err      error             // returned by every call when set

	Calls []Call
}

var _ conn.Querier = (*ScriptedQuerier)(nil)

// Query implements conn.Querier.
func (q *ScriptedQuerier) Query(_ context.Context, sql string, params []any) (conn.Cursor, error) {
	q.Calls = append(q.Calls, Call{SQL: sql, Params: slices.Clone(params)})
	if q.Err != nil {
		return nil, q.Err
	}
	if len(q.Cursors) == 0 {
		return &ScriptedCursor{}, nil
	}
	c := q.Cursors[0]
	q.Cursors = q.Cursors[1:]
	return c, nil
}

// Exec implements conn.Querier.
func (q *ScriptedQuerier) Exec(_ context.Context, sql string, params []any) (int64, error) {
	q.Calls = append(q.Calls, Call{SQL: sql, Params: slices.Clone(params)})
	if q.Err != nil {
		return 0, q.Err
	}
	return q.Affected, nil
}
