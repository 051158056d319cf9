package conn

import (
	"database/sql"
	"errors"
	"slices"

	"github.com/roach88/joinery/internal/errs"
)

// Metadata marks the start of a result set.
type Metadata struct {
	Columns []string
}

// Item is one element pulled from a Cursor: either a data row or a
// metadata marker, never both.
type Item struct {
	Row      *Row
	Metadata *Metadata
}

// IsMetadata reports whether the item is a metadata marker.
func (i Item) IsMetadata() bool {
	return i.Metadata != nil
}

// Cursor yields the items of one statement's results.
//
// Next returns ok=false once the results are exhausted, and keeps doing so
// on later calls. Close releases the underlying resources and may be called
// more than once.
type Cursor interface {
	Next() (Item, bool, error)
	Close() error
}

// rowsCursor adapts *sql.Rows. It emits a metadata marker at the start of
// every result set, then that set's rows.
type rowsCursor struct {
	rows     *sql.Rows
	columns  []string
	needMeta bool
	done     bool
}

func newRowsCursor(rows *sql.Rows) *rowsCursor {
	return &rowsCursor{rows: rows, needMeta: true}
}

func (c *rowsCursor) Next() (Item, bool, error) {
	for !c.done {
		if c.needMeta {
			cols, err := c.rows.Columns()
			if err != nil {
				return Item{}, false, c.fail("read columns", err)
			}
			c.columns = cols
			c.needMeta = false
			return Item{Metadata: &Metadata{Columns: slices.Clone(cols)}}, true, nil
		}

		if c.rows.Next() {
			values := make([]any, len(c.columns))
			ptrs := make([]any, len(values))
			for i := range values {
				ptrs[i] = &values[i]
			}
			if err := c.rows.Scan(ptrs...); err != nil {
				return Item{}, false, c.fail("scan row", err)
			}
			return Item{Row: NewRow(c.columns, values)}, true, nil
		}

		if err := c.rows.Err(); err != nil {
			return Item{}, false, c.fail("iterate rows", err)
		}
		if c.rows.NextResultSet() {
			c.needMeta = true
			continue
		}
		if err := c.finish(); err != nil {
			return Item{}, false, err
		}
	}
	return Item{}, false, nil
}

func (c *rowsCursor) Close() error {
	if c.done {
		return nil
	}
	return c.finish()
}

func (c *rowsCursor) finish() error {
	c.done = true
	if err := c.rows.Close(); err != nil {
		return errs.WrapDriver("close rows", err)
	}
	return nil
}

func (c *rowsCursor) fail(op string, err error) error {
	c.done = true
	return errs.WrapDriver(op, errors.Join(err, c.rows.Close()))
}
