package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/joinery/internal/filter"
)

// CompileFilter compiles e into a WHERE fragment, binding its values on b.
//
// Binary comparisons bind one value and render with a leading space
// (" Person.id = @p1"). NULL checks bind nothing. LIKE conditions write the
// pattern into the SQL text. IN binds one value per element and BETWEEN
// binds two. An Expr with alternates renders as "( e OR alt1 OR alt2 )".
//
// On error nothing is left bound on b.
func CompileFilter(e filter.Expr, b *Binder) (string, error) {
	scratch := b.Clone()
	sql, err := compileExpr(e, &scratch)
	if err != nil {
		return "", err
	}
	*b = scratch
	return sql, nil
}

func compileExpr(e filter.Expr, b *Binder) (string, error) {
	if len(e.Alternates) == 0 {
		return compileCondition(e.Column, e.Cond, b)
	}

	parts := make([]string, 0, len(e.Alternates)+1)
	first, err := compileCondition(e.Column, e.Cond, b)
	if err != nil {
		return "", err
	}
	parts = append(parts, first)

	for i, alt := range e.Alternates {
		sql, err := compileExpr(alt, b)
		if err != nil {
			return "", fmt.Errorf("compile alternate %d: %w", i+1, err)
		}
		parts = append(parts, sql)
	}

	return "( " + strings.Join(parts, " OR ") + " )", nil
}

func compileCondition(col filter.Column, cond filter.Condition, b *Binder) (string, error) {
	name := col.Qualified()

	switch c := cond.(type) {
	case filter.Eq:
		return compileBinary(name, filter.Operator(c), c.Value, b), nil
	case filter.Neq:
		return compileBinary(name, filter.Operator(c), c.Value, b), nil
	case filter.Lt:
		return compileBinary(name, filter.Operator(c), c.Value, b), nil
	case filter.LtEq:
		return compileBinary(name, filter.Operator(c), c.Value, b), nil
	case filter.Gt:
		return compileBinary(name, filter.Operator(c), c.Value, b), nil
	case filter.GtEq:
		return compileBinary(name, filter.Operator(c), c.Value, b), nil
	case filter.IsNull:
		return name + " IS NULL", nil
	case filter.IsNotNull:
		return name + " IS NOT NULL", nil
	case filter.Contains:
		return compileLike(name, "%"+c.Pattern+"%")
	case filter.StartsWith:
		return compileLike(name, c.Pattern+"%")
	case filter.EndsWith:
		return compileLike(name, "%"+c.Pattern)
	case filter.In:
		return compileIn(name, c.Values, b), nil
	case filter.Between:
		lo := b.Bind(c.Low)
		hi := b.Bind(c.High)
		return fmt.Sprintf("%s BETWEEN %s AND %s", name, lo, hi), nil
	case nil:
		return "", fmt.Errorf("filter on %s has no condition", name)
	default:
		return "", fmt.Errorf("unsupported condition type: %T", cond)
	}
}

func compileBinary(name, op string, value any, b *Binder) string {
	return fmt.Sprintf(" %s %s %s", name, op, b.Bind(value))
}

// compileLike renders a LIKE literal with single quotes doubled. Patterns
// containing a backslash are rejected: MySQL treats backslash as an escape
// inside string literals, where \' would close the literal.
func compileLike(name, pattern string) (string, error) {
	if strings.ContainsRune(pattern, '\\') {
		return "", fmt.Errorf("LIKE pattern on %s contains a backslash", name)
	}
	return fmt.Sprintf("%s LIKE '%s'", name, strings.ReplaceAll(pattern, "'", "''")), nil
}

// compileIn renders "col IN (@p1,@p2)". An empty list renders as a
// predicate that matches nothing, since "IN ()" is not valid SQL.
func compileIn(name string, values []any, b *Binder) string {
	if len(values) == 0 {
		return "1 = 0"
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = b.Bind(v)
	}
	return fmt.Sprintf("%s IN (%s)", name, strings.Join(placeholders, ","))
}

// OrderFragment renders "<col> ASC" or "<col> DESC".
func OrderFragment(col filter.Column, ascending bool) string {
	if ascending {
		return col.Qualified() + " ASC"
	}
	return col.Qualified() + " DESC"
}
