// Package filter provides the predicate tree attached to a query builder.
//
// A filter is an Expr: one qualified Column, one Condition, and an ordered
// list of OR alternates. Expressions are values. Attaching an alternate
// returns a new Expr and never mutates the receiver.
//
// ARCHITECTURE:
//
// The filter tree sits between the caller and the SQL compiler:
//
//	[Column constructors] → [Expr tree] → [querysql.CompileFilter] → "<sql>", params
//
// Compilation into SQL text and placeholder binding lives in querysql; this
// package only describes predicates and checks which tables they reference.
//
// CONDITIONS:
//
// Condition is a sealed interface using the marker method pattern. Only the
// types in this package implement it, so the compiler switches over a closed
// set:
//
//	Eq, Neq, Lt, LtEq, Gt, GtEq   one bound parameter each
//	IsNull, IsNotNull             no parameter
//	Contains, StartsWith, EndsWith  LIKE pattern, interpolated as a literal
//	In                            one bound parameter per value
//	Between                       two bound parameters
//
// DISJUNCTION GROUPS:
//
// An Expr with alternates compiles as a parenthesized OR of itself and each
// alternate, in attachment order:
//
//	a.Or(b).Or(c)  →  ( a OR b OR c )
//
// Alternates compile independently, so an alternate that carries its own
// alternates becomes a nested group.
//
// Example:
//
//	id := filter.Col("Person", "id")
//	email := filter.Col("Person", "email")
//	expr := id.Eq(5).Or(email.IsNull())
package filter
