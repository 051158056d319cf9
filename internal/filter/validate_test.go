package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinedSet(tables ...string) func(string) bool {
	return func(table string) bool {
		for _, t := range tables {
			if t == table {
				return true
			}
		}
		return false
	}
}

func TestValidate_Clean(t *testing.T) {
	expr := Col("Person", "id").Eq(1).Or(Col("Posts", "id").Eq(2))

	result := Validate(expr, joinedSet("Person", "Posts"))

	assert.True(t, result.OK())
	assert.Empty(t, result.Warnings)
}

func TestValidate_AlternateOnUnjoinedTable(t *testing.T) {
	expr := Col("Person", "id").Eq(1).Or(Col("Posts", "id").Eq(2))

	result := Validate(expr, joinedSet("Person"))

	assert.False(t, result.OK())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Posts.id")
	assert.Contains(t, result.Warnings[0], "not joined")
}

func TestValidate_RootColumnNotReported(t *testing.T) {
	// The builder rejects the top-level column itself; Validate only looks at alternates.
	result := Validate(Col("Posts", "id").Eq(1), joinedSet("Person"))
	assert.True(t, result.OK())
}

func TestValidate_NestedAlternates(t *testing.T) {
	inner := Col("Person", "email").IsNull().Or(Col("Tags", "id").Eq(3))
	expr := Col("Person", "id").Eq(1).Or(inner)

	result := Validate(expr, joinedSet("Person"))

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Tags")
}

func TestValidate_EmptyIn(t *testing.T) {
	result := Validate(Col("Person", "id").In(), joinedSet("Person"))

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "IN list")
}

func TestValidate_MissingCondition(t *testing.T) {
	result := Validate(Expr{Column: Col("Person", "id")}, joinedSet("Person"))

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no condition")
}

func TestValidate_NilJoinedFunc(t *testing.T) {
	expr := Col("Person", "id").Eq(1).Or(Col("Posts", "id").Eq(2))
	assert.True(t, Validate(expr, nil).OK())
}
