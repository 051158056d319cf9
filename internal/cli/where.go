package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/joinery/internal/filter"
	"github.com/roach88/joinery/internal/schema"
)

// whereOps lists the operators accepted by --where and --or.
var whereOps = []string{"=", "<>", "<", "<=", ">", ">=", "like", "^like", "like$", "in", "between", "is-null", "is-not-null"}

// ParseWhere parses "<table>.<field> <op> [value]" against reg.
//
// Values are converted to the field's kind. "in" takes a comma separated
// list, "between" takes "lo,hi". like matches anywhere, ^like matches a
// prefix and like$ a suffix. Surrounding single or double quotes on a
// value are removed.
func ParseWhere(reg *schema.Registry, s string) (filter.Expr, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return filter.Expr{}, fmt.Errorf("where %q: want <table>.<field> <op> [value]", s)
	}
	ref, op := fields[0], strings.ToLower(fields[1])
	rest := strings.TrimSpace(strings.TrimSpace(s)[len(ref):])
	raw := strings.TrimSpace(rest[len(fields[1]):])

	table, field, ok := splitColumn(ref)
	if !ok {
		return filter.Expr{}, fmt.Errorf("where %q: column %q must be <table>.<field>", s, ref)
	}
	t, err := reg.Table(table)
	if err != nil {
		return filter.Expr{}, fmt.Errorf("where %q: %w", s, err)
	}
	col, err := t.Col(field)
	if err != nil {
		return filter.Expr{}, fmt.Errorf("where %q: %w", s, err)
	}
	f, _ := t.Field(field)

	switch op {
	case "is-null":
		return col.IsNull(), nil
	case "is-not-null":
		return col.IsNotNull(), nil
	}

	if raw == "" {
		return filter.Expr{}, fmt.Errorf("where %q: operator %s needs a value", s, op)
	}

	switch op {
	case "like":
		return col.Contains(unquote(raw)), nil
	case "^like":
		return col.StartsWith(unquote(raw)), nil
	case "like$":
		return col.EndsWith(unquote(raw)), nil
	case "in":
		values, err := convertList(f, raw)
		if err != nil {
			return filter.Expr{}, fmt.Errorf("where %q: %w", s, err)
		}
		return col.In(values...), nil
	case "between":
		values, err := convertList(f, raw)
		if err != nil {
			return filter.Expr{}, fmt.Errorf("where %q: %w", s, err)
		}
		if len(values) != 2 {
			return filter.Expr{}, fmt.Errorf("where %q: between takes lo,hi", s)
		}
		return col.Between(values[0], values[1]), nil
	}

	v, err := f.Kind.Convert(unquote(raw))
	if err != nil {
		return filter.Expr{}, fmt.Errorf("where %q: %w", s, err)
	}
	switch op {
	case "=":
		return col.Eq(v), nil
	case "<>":
		return col.Neq(v), nil
	case "<":
		return col.Lt(v), nil
	case "<=":
		return col.LtEq(v), nil
	case ">":
		return col.Gt(v), nil
	case ">=":
		return col.GtEq(v), nil
	default:
		return filter.Expr{}, fmt.Errorf("where %q: unknown operator %q (want one of %s)", s, op, strings.Join(whereOps, " "))
	}
}

func convertList(f schema.Field, raw string) ([]any, error) {
	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := f.Kind.Convert(unquote(strings.TrimSpace(p)))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// splitColumn splits "<table>.<field>" at the last dot; the table part
// may be schema-qualified.
func splitColumn(ref string) (table, field string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i <= 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// parseOrder parses "<table>.<field>[:asc|desc]".
func parseOrder(reg *schema.Registry, s string) (filter.Column, bool, error) {
	ref, dir, _ := strings.Cut(s, ":")
	ascending := true
	switch strings.ToLower(dir) {
	case "", "asc":
	case "desc":
		ascending = false
	default:
		return filter.Column{}, false, fmt.Errorf("order %q: direction must be asc or desc", s)
	}

	table, field, ok := splitColumn(ref)
	if !ok {
		return filter.Column{}, false, fmt.Errorf("order %q: column must be <table>.<field>", s)
	}
	t, err := reg.Table(table)
	if err != nil {
		return filter.Column{}, false, fmt.Errorf("order %q: %w", s, err)
	}
	col, err := t.Col(field)
	if err != nil {
		return filter.Column{}, false, fmt.Errorf("order %q: %w", s, err)
	}
	return col, ascending, nil
}
