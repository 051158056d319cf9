package schema

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/joinery/internal/errs"
)

// Registry holds every declared table and the relations between them.
//
// Tables are registered once at startup, then Build validates the whole set
// and precomputes each table's relation lookup. After Build the registry and
// its tables are read-only and safe for concurrent use.
type Registry struct {
	order  []string
	tables map[string]*Table
	built  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Register adds tables. A qualified name may be registered only once.
func (r *Registry) Register(tables ...*Table) error {
	if r.built {
		return fmt.Errorf("register: registry already built")
	}
	for _, t := range tables {
		if t == nil {
			return fmt.Errorf("register: nil table")
		}
		name := t.QualifiedName()
		if _, exists := r.tables[name]; exists {
			return fmt.Errorf("register: table %s already registered", name)
		}
		r.tables[name] = t
		r.order = append(r.order, name)
	}
	return nil
}

// Table returns the table registered under its qualified name.
func (r *Registry) Table(name string) (*Table, error) {
	t, ok := r.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s not registered", name)
	}
	return t, nil
}

// Tables returns every table in registration order.
func (r *Registry) Tables() []*Table {
	out := make([]*Table, len(r.order))
	for i, name := range r.order {
		out[i] = r.tables[name]
	}
	return out
}

// Build validates every table and computes relation lookups.
//
// All problems are collected and returned together as one INVALID_SCHEMA
// error. A failed Build leaves the registry unbuilt.
func (r *Registry) Build() error {
	var result *multierror.Error
	for _, name := range r.order {
		if err := r.validateTable(r.tables[name]); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return errs.NewInvalidSchema(err)
	}

	for _, name := range r.order {
		r.linkForeignKeys(r.tables[name])
	}
	r.built = true
	return nil
}

// validateTable checks one table and its foreign keys.
func (r *Registry) validateTable(t *Table) error {
	var result *multierror.Error
	name := t.QualifiedName()

	if t.Name == "" {
		result = multierror.Append(result, fmt.Errorf("table with empty name"))
	}
	if len(t.Fields) == 0 {
		result = multierror.Append(result, fmt.Errorf("table %s: no fields declared", name))
	}

	seen := make(map[string]bool, len(t.Fields))
	primaryKeys := 0
	for _, f := range t.Fields {
		if f.Name == "" {
			result = multierror.Append(result, fmt.Errorf("table %s: field with empty name", name))
			continue
		}
		if seen[f.Name] {
			result = multierror.Append(result, fmt.Errorf("table %s: duplicate field %s", name, f.Name))
		}
		seen[f.Name] = true

		if !f.Kind.Valid() {
			result = multierror.Append(result, fmt.Errorf("table %s: field %s has unknown kind %q", name, f.Name, f.Kind))
		}
		if f.PrimaryKey {
			primaryKeys++
		}
		if f.ForeignKey != "" {
			if err := r.validateForeignKey(name, f); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	if primaryKeys > 1 {
		result = multierror.Append(result, fmt.Errorf("table %s: %d primary keys declared, at most one allowed", name, primaryKeys))
	}

	return result.ErrorOrNil()
}

func (r *Registry) validateForeignKey(table string, f Field) error {
	target, field, ok := splitForeignKey(f.ForeignKey)
	if !ok {
		return fmt.Errorf("table %s: field %s: foreign key %q must be <table>.<field>", table, f.Name, f.ForeignKey)
	}
	ref, exists := r.tables[target]
	if !exists {
		return fmt.Errorf("table %s: field %s: foreign key references unknown table %s", table, f.Name, target)
	}
	if _, ok := ref.Field(field); !ok {
		return fmt.Errorf("table %s: field %s: foreign key references unknown field %s.%s", table, f.Name, target, field)
	}
	return nil
}

// linkForeignKeys records the relation for each foreign key of t in both
// directions. A field Posts.person_id referencing Person.id yields
//
//	Person → Posts: "Posts ON Posts.person_id = Person.id"
//	Posts → Person: "Person ON Posts.person_id = Person.id"
func (r *Registry) linkForeignKeys(t *Table) {
	name := t.QualifiedName()
	for _, f := range t.Fields {
		if f.ForeignKey == "" {
			continue
		}
		target, _, _ := splitForeignKey(f.ForeignKey)
		if target == name {
			continue // self references cannot be joined without aliases
		}
		cond := fmt.Sprintf("%s.%s = %s", name, f.Name, f.ForeignKey)
		r.tables[target].addRelation(name, name+" ON "+cond)
		t.addRelation(target, target+" ON "+cond)
	}
}
