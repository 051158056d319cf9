// Package crud runs primary-key based writes for registered tables.
//
// Values are maps keyed by bare field name; projection.Values converts a
// record into that shape. Every function returns the affected row count.
package crud

import (
	"context"
	"fmt"

	"github.com/roach88/joinery/internal/conn"
	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/projection"
	"github.com/roach88/joinery/internal/querysql"
	"github.com/roach88/joinery/internal/schema"
)

// Insert writes every field of t.
func Insert(ctx context.Context, q conn.Querier, t *schema.Table, values map[string]any) (int64, error) {
	return run(ctx, q, "insert", querysql.Insert, t, values)
}

// InsertIgnorePK writes every field except the primary key.
func InsertIgnorePK(ctx context.Context, q conn.Querier, t *schema.Table, values map[string]any) (int64, error) {
	return run(ctx, q, "insert", querysql.InsertIgnorePK, t, values)
}

// Update rewrites every non-key field of the row identified by the
// primary key in values.
func Update(ctx context.Context, q conn.Querier, t *schema.Table, values map[string]any) (int64, error) {
	return run(ctx, q, "update", querysql.Update, t, values)
}

// Delete removes the row identified by the primary key in values.
func Delete(ctx context.Context, q conn.Querier, t *schema.Table, values map[string]any) (int64, error) {
	return run(ctx, q, "delete", querysql.Delete, t, values)
}

// InsertRecord is Insert for a struct record decoded by projection.Struct.
func InsertRecord(ctx context.Context, q conn.Querier, t *schema.Table, rec any) (int64, error) {
	values, err := projection.Values(t, rec)
	if err != nil {
		return 0, err
	}
	return Insert(ctx, q, t, values)
}

// UpdateRecord is Update for a struct record.
func UpdateRecord(ctx context.Context, q conn.Querier, t *schema.Table, rec any) (int64, error) {
	values, err := projection.Values(t, rec)
	if err != nil {
		return 0, err
	}
	return Update(ctx, q, t, values)
}

// DeleteRecord is Delete for a struct record.
func DeleteRecord(ctx context.Context, q conn.Querier, t *schema.Table, rec any) (int64, error) {
	values, err := projection.Values(t, rec)
	if err != nil {
		return 0, err
	}
	return Delete(ctx, q, t, values)
}

type builder func(*schema.Table, map[string]any) (querysql.Statement, error)

func run(ctx context.Context, q conn.Querier, op string, build builder, t *schema.Table, values map[string]any) (int64, error) {
	stmt, err := build(t, values)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", op, t.QualifiedName(), err)
	}
	n, err := q.Exec(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return 0, errs.WrapDriver(op+" "+t.QualifiedName(), err)
	}
	return n, nil
}
