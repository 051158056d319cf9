package filter

import "fmt"

// ValidationResult reports problems a filter compiles through anyway.
//
// The builder rejects filters whose own column belongs to an unjoined table.
// Alternates are not rejected; they are reported here so the builder can
// log them.
type ValidationResult struct {
	// Warnings lists each problem found, in traversal order.
	Warnings []string
}

// OK reports whether no warnings were produced.
func (r ValidationResult) OK() bool {
	return len(r.Warnings) == 0
}

// Validate walks e and its alternates.
//
// joined reports whether a table is part of the builder. Validate flags
// alternates on unjoined tables, conditions missing entirely, and empty IN
// lists. It is a pure function with no side effects.
func Validate(e Expr, joined func(table string) bool) ValidationResult {
	v := &validator{joined: joined, warnings: []string{}}
	v.validateExpr(e, 0)
	return ValidationResult{Warnings: v.warnings}
}

// validator accumulates warnings during traversal.
type validator struct {
	joined   func(string) bool
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateExpr(e Expr, depth int) {
	if depth > 0 && v.joined != nil && !v.joined(e.Column.Table) {
		v.addWarning("alternate on %s references table %s which is not joined",
			e.Column.Qualified(), e.Column.Table)
	}

	switch cond := e.Cond.(type) {
	case nil:
		v.addWarning("filter on %s has no condition", e.Column.Qualified())
	case In:
		if len(cond.Values) == 0 {
			v.addWarning("IN list on %s is empty and matches no rows", e.Column.Qualified())
		}
	}

	for _, alt := range e.Alternates {
		v.validateExpr(alt, depth+1)
	}
}
