package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/joinery/internal/schema"
)

// PersonTable returns a fresh, unregistered Person descriptor.
func PersonTable() *schema.Table {
	return &schema.Table{
		Name: "Person",
		Fields: []schema.Field{
			{Name: "id", Kind: schema.KindInt, PrimaryKey: true},
			{Name: "email", Kind: schema.KindString, Nullable: true},
			{Name: "age", Kind: schema.KindInt, Nullable: true},
		},
	}
}

// PostsTable returns a fresh, unregistered Posts descriptor whose
// person_id references Person.id.
func PostsTable() *schema.Table {
	return &schema.Table{
		Name: "Posts",
		Fields: []schema.Field{
			{Name: "id", Kind: schema.KindInt, PrimaryKey: true},
			{Name: "person_id", Kind: schema.KindInt, ForeignKey: "Person.id"},
			{Name: "title", Kind: schema.KindString},
		},
	}
}

// TagsTable returns a table with no relation to Person or Posts.
func TagsTable() *schema.Table {
	return &schema.Table{
		Name: "Tags",
		Fields: []schema.Field{
			{Name: "id", Kind: schema.KindInt, PrimaryKey: true},
			{Name: "label", Kind: schema.KindString},
		},
	}
}

// Schema is a built registry of the fixture tables.
type Schema struct {
	Registry *schema.Registry
	Person   *schema.Table
	Posts    *schema.Table
	Tags     *schema.Table
}

// NewSchema registers and builds Person, Posts and Tags.
func NewSchema(t testing.TB) *Schema {
	t.Helper()
	s := &Schema{
		Registry: schema.NewRegistry(),
		Person:   PersonTable(),
		Posts:    PostsTable(),
		Tags:     TagsTable(),
	}
	require.NoError(t, s.Registry.Register(s.Person, s.Posts, s.Tags))
	require.NoError(t, s.Registry.Build())
	return s
}
