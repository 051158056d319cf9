// Package query composes and runs SELECT statements over registered tables.
//
// A Core is created for a root table and extended step by step:
//
//	q := query.New(person)
//	if _, err := q.LeftJoin(posts); err != nil { ... }
//	if _, err := q.Filter(person.MustCol("id").Eq(5)); err != nil { ... }
//	if _, err := q.OrderByDesc(posts.MustCol("id")); err != nil { ... }
//	rows, err := query.All(ctx, q, db, projection.Tuple(...))
//
// Each step validates against the tables joined so far and fails without
// changing the builder. Every compiled filter binds its values on one
// shared counter, so "@pN" is always backed by the N-th parameter.
//
// Execution never drains a Core; the same builder can run again, and
// Clone gives an independent copy to extend separately.
package query
