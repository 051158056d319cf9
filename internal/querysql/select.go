package querysql

import (
	"strings"

	"github.com/roach88/joinery/internal/schema"
)

// SelectList renders every field of every table as
// `<table>.<field> AS "<table>.<field>"`, comma separated, in table order
// then field declaration order. The alias is the key row decoding reads by.
func SelectList(tables []*schema.Table) string {
	var items []string
	for _, t := range tables {
		for _, f := range t.Fields {
			key := t.Key(f.Name)
			items = append(items, key+` AS "`+key+`"`)
		}
	}
	return strings.Join(items, ",")
}

// Select is the assembled state of one SELECT statement.
type Select struct {
	Tables  []*schema.Table // registered tables, root first
	Joins   string          // accumulated " <KIND> JOIN <on-clause>" fragments
	Filters []string        // compiled predicates, AND-combined
	Order   []string        // "<col> ASC|DESC" fragments
}

// String assembles the statement text.
func (s Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(SelectList(s.Tables))
	b.WriteString(" FROM ")
	if len(s.Tables) > 0 {
		b.WriteString(s.Tables[0].QualifiedName())
	}
	b.WriteString(s.Joins)
	if len(s.Filters) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(s.Filters, " AND "))
	}
	if len(s.Order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.Order, ", "))
	}
	return b.String()
}
