package filter

import "slices"

// Column is a qualified column reference: a table name and one of its fields.
//
// Table is the table's qualified name ("schema.table" when the table lives
// in a named schema). The rendered form "<table>.<field>" is used both in
// generated SQL and as the row lookup key during decoding.
type Column struct {
	Table string
	Field string
}

// Col creates a Column without validating it against a schema.
// Use schema.Table.Col for a checked lookup.
func Col(table, field string) Column {
	return Column{Table: table, Field: field}
}

// Qualified returns "<table>.<field>".
func (c Column) Qualified() string {
	return c.Table + "." + c.Field
}

// Condition is the test applied to a column.
//
// This is a sealed interface - only types in this package implement it.
type Condition interface {
	condition() // Marker method - seals interface to this package
}

// Eq matches rows where the column equals Value.
type Eq struct{ Value any }

// Neq matches rows where the column differs from Value.
type Neq struct{ Value any }

// Lt matches rows where the column is less than Value.
type Lt struct{ Value any }

// LtEq matches rows where the column is less than or equal to Value.
type LtEq struct{ Value any }

// Gt matches rows where the column is greater than Value.
type Gt struct{ Value any }

// GtEq matches rows where the column is greater than or equal to Value.
type GtEq struct{ Value any }

// IsNull matches rows where the column is NULL.
type IsNull struct{}

// IsNotNull matches rows where the column is not NULL.
type IsNotNull struct{}

// Contains matches rows where the column contains Pattern.
//
// Pattern is written into the SQL text as a LIKE literal, not bound as a
// parameter. Single quotes are doubled and a backslash is a compile
// error; LIKE wildcards inside Pattern keep their meaning.
type Contains struct{ Pattern string }

// StartsWith matches rows where the column begins with Pattern.
// Pattern is interpolated like Contains.
type StartsWith struct{ Pattern string }

// EndsWith matches rows where the column ends with Pattern.
// Pattern is interpolated like Contains.
type EndsWith struct{ Pattern string }

// In matches rows where the column equals one of Values.
type In struct{ Values []any }

// Between matches rows where Low <= column <= High.
type Between struct {
	Low  any
	High any
}

func (Eq) condition()         {}
func (Neq) condition()        {}
func (Lt) condition()         {}
func (LtEq) condition()       {}
func (Gt) condition()         {}
func (GtEq) condition()       {}
func (IsNull) condition()     {}
func (IsNotNull) condition()  {}
func (Contains) condition()   {}
func (StartsWith) condition() {}
func (EndsWith) condition()   {}
func (In) condition()         {}
func (Between) condition()    {}

// Operator returns the SQL comparison operator for binary conditions,
// or "" for conditions that are not a single comparison.
func Operator(c Condition) string {
	switch c.(type) {
	case Eq:
		return "="
	case Neq:
		return "<>"
	case Lt:
		return "<"
	case LtEq:
		return "<="
	case Gt:
		return ">"
	case GtEq:
		return ">="
	default:
		return ""
	}
}

// Expr is one predicate plus its OR alternates.
type Expr struct {
	Column     Column
	Cond       Condition
	Alternates []Expr
}

// Or returns a copy of e with alt appended to its alternates.
func (e Expr) Or(alt Expr) Expr {
	next := e
	next.Alternates = append(slices.Clip(e.Alternates), alt)
	return next
}

// Tables returns every table referenced by e and its alternates, in first
// occurrence order without duplicates.
func (e Expr) Tables() []string {
	var tables []string
	e.walk(func(x Expr) {
		if !slices.Contains(tables, x.Column.Table) {
			tables = append(tables, x.Column.Table)
		}
	})
	return tables
}

func (e Expr) walk(fn func(Expr)) {
	fn(e)
	for _, alt := range e.Alternates {
		alt.walk(fn)
	}
}

func (c Column) expr(cond Condition) Expr {
	return Expr{Column: c, Cond: cond}
}

// Eq creates "column = value".
func (c Column) Eq(value any) Expr { return c.expr(Eq{Value: value}) }

// Neq creates "column <> value".
func (c Column) Neq(value any) Expr { return c.expr(Neq{Value: value}) }

// Lt creates "column < value".
func (c Column) Lt(value any) Expr { return c.expr(Lt{Value: value}) }

// LtEq creates "column <= value".
func (c Column) LtEq(value any) Expr { return c.expr(LtEq{Value: value}) }

// Gt creates "column > value".
func (c Column) Gt(value any) Expr { return c.expr(Gt{Value: value}) }

// GtEq creates "column >= value".
func (c Column) GtEq(value any) Expr { return c.expr(GtEq{Value: value}) }

// IsNull creates "column IS NULL".
func (c Column) IsNull() Expr { return c.expr(IsNull{}) }

// IsNotNull creates "column IS NOT NULL".
func (c Column) IsNotNull() Expr { return c.expr(IsNotNull{}) }

// Contains creates "column LIKE '%pattern%'".
func (c Column) Contains(pattern string) Expr { return c.expr(Contains{Pattern: pattern}) }

// StartsWith creates "column LIKE 'pattern%'".
func (c Column) StartsWith(pattern string) Expr { return c.expr(StartsWith{Pattern: pattern}) }

// EndsWith creates "column LIKE '%pattern'".
func (c Column) EndsWith(pattern string) Expr { return c.expr(EndsWith{Pattern: pattern}) }

// In creates "column IN (...)" over values.
func (c Column) In(values ...any) Expr {
	return c.expr(In{Values: slices.Clone(values)})
}

// Between creates "column BETWEEN low AND high".
func (c Column) Between(low, high any) Expr {
	return c.expr(Between{Low: low, High: high})
}

// InSlice creates "column IN (...)" from a typed slice.
func InSlice[T any](c Column, values []T) Expr {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return c.expr(In{Values: vals})
}
