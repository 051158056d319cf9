package schema

import (
	"sort"
	"strings"

	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/filter"
)

// Field is one declared column of a table.
type Field struct {
	Name       string `yaml:"name" json:"name"`
	Kind       Kind   `yaml:"kind" json:"kind"`
	Nullable   bool   `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	PrimaryKey bool   `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`

	// ForeignKey is "<table>.<field>" of the referenced column. The table part
	// may itself be schema-qualified ("dbo.Person.id").
	ForeignKey string `yaml:"foreign_key,omitempty" json:"foreign_key,omitempty"`
}

// Table is the static descriptor of one declared table.
//
// A Table is immutable once its Registry is built and is shared by every
// builder that queries it.
type Table struct {
	Schema string  `yaml:"schema,omitempty" json:"schema,omitempty"`
	Name   string  `yaml:"name" json:"name"`
	Fields []Field `yaml:"fields" json:"fields"`

	// relations maps a target table's qualified name to on-clause text
	// "<target> ON <a.x> = <b.y>". Filled by Registry.Build.
	relations map[string]string
}

// QualifiedName returns "schema.name", or the bare name without a schema.
func (t *Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// FieldNames returns the field names in declaration order.
func (t *Table) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the named field.
func (t *Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Key returns the row lookup key for field: "<qualified table>.<field>".
func (t *Table) Key(field string) string {
	return t.QualifiedName() + "." + field
}

// Col returns a checked column reference for filtering and ordering.
func (t *Table) Col(field string) (filter.Column, error) {
	if _, ok := t.Field(field); !ok {
		return filter.Column{}, errs.NewColumnNotFound(t.QualifiedName(), field)
	}
	return filter.Col(t.QualifiedName(), field), nil
}

// MustCol is Col for statically known fields; it panics on an unknown field.
func (t *Table) MustCol(field string) filter.Column {
	c, err := t.Col(field)
	if err != nil {
		panic(err)
	}
	return c
}

// PrimaryKey returns the primary key field name.
func (t *Table) PrimaryKey() (string, error) {
	for _, f := range t.Fields {
		if f.PrimaryKey {
			return f.Name, nil
		}
	}
	return "", errs.NewMissingPrimaryKey(t.QualifiedName(), "")
}

// Relation returns the on-clause text for joining target onto a query rooted
// at t, e.g. "Posts ON Posts.person_id = Person.id".
func (t *Table) Relation(target string) (string, error) {
	rel, ok := t.relations[target]
	if !ok {
		return "", errs.NewUnknownRelation(t.QualifiedName(), target)
	}
	return rel, nil
}

// Related returns the qualified names of every table t has a relation to, sorted.
func (t *Table) Related() []string {
	out := make([]string, 0, len(t.relations))
	for target := range t.relations {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

func (t *Table) addRelation(target, onClause string) {
	if t.relations == nil {
		t.relations = make(map[string]string)
	}
	if _, exists := t.relations[target]; exists {
		return // first declared foreign key wins
	}
	t.relations[target] = onClause
}

// splitForeignKey splits "<table>.<field>" at the last dot.
func splitForeignKey(fk string) (table, field string, ok bool) {
	idx := strings.LastIndex(fk, ".")
	if idx <= 0 || idx == len(fk)-1 {
		return "", "", false
	}
	return fk[:idx], fk[idx+1:], true
}

