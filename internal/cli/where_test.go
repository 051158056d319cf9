package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinery/internal/filter"
	"github.com/roach88/joinery/internal/testutil"
)

func TestParseWhere(t *testing.T) {
	s := testutil.NewSchema(t)
	id := s.Person.MustCol("id")
	email := s.Person.MustCol("email")
	title := s.Posts.MustCol("title")

	tests := []struct {
		name  string
		input string
		want  filter.Expr
	}{
		{"eq", "Person.id = 5", id.Eq(int64(5))},
		{"neq", "Person.id <> 5", id.Neq(int64(5))},
		{"lt", "Person.id < 5", id.Lt(int64(5))},
		{"lteq", "Person.id <= 5", id.LtEq(int64(5))},
		{"gt", "Person.id > 5", id.Gt(int64(5))},
		{"gteq", "Person.id >= 5", id.GtEq(int64(5))},
		{"string keeps inner spaces", "Posts.title = 'it is me'", title.Eq("it is me")},
		{"like", "Posts.title like hel", title.Contains("hel")},
		{"prefix", "Posts.title ^like 'he'", title.StartsWith("he")},
		{"suffix", "Posts.title LIKE$ lo", title.EndsWith("lo")},
		{"in", "Person.id in 1, 2,3", id.In(int64(1), int64(2), int64(3))},
		{"between", "Person.id between 1,9", id.Between(int64(1), int64(9))},
		{"is null", "Person.email is-null", email.IsNull()},
		{"is not null", "Person.email is-not-null", email.IsNotNull()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWhere(s.Registry, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWhere_Errors(t *testing.T) {
	s := testutil.NewSchema(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"too short", "Person.id", "want <table>.<field> <op> [value]"},
		{"no dot", "id = 1", "must be <table>.<field>"},
		{"unknown table", "Nope.id = 1", "Nope"},
		{"unknown column", "Person.nope = 1", "column nope not found in Person"},
		{"missing value", "Person.id =", "needs a value"},
		{"bad int", "Person.id = x", `where "Person.id = x"`},
		{"between arity", "Person.id between 1", "between takes lo,hi"},
		{"unknown op", "Person.id ~ 1", "unknown operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWhere(s.Registry, tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseOrder(t *testing.T) {
	s := testutil.NewSchema(t)

	col, asc, err := parseOrder(s.Registry, "Person.id")
	require.NoError(t, err)
	assert.Equal(t, filter.Col("Person", "id"), col)
	assert.True(t, asc)

	col, asc, err = parseOrder(s.Registry, "Posts.title:DESC")
	require.NoError(t, err)
	assert.Equal(t, filter.Col("Posts", "title"), col)
	assert.False(t, asc)

	_, _, err = parseOrder(s.Registry, "Person.id:sideways")
	assert.ErrorContains(t, err, "direction must be asc or desc")

	_, _, err = parseOrder(s.Registry, "Person.nope")
	assert.ErrorContains(t, err, "column nope not found")
}

func TestSplitColumn(t *testing.T) {
	table, field, ok := splitColumn("dbo.Person.id")
	require.True(t, ok)
	assert.Equal(t, "dbo.Person", table)
	assert.Equal(t, "id", field)

	_, _, ok = splitColumn("Person.")
	assert.False(t, ok)
	_, _, ok = splitColumn(".id")
	assert.False(t, ok)
}

func TestParseParam(t *testing.T) {
	assert.Equal(t, int64(-3), parseParam("-3"))
	assert.Equal(t, 0.5, parseParam("0.5"))
	assert.Equal(t, false, parseParam("false"))
	assert.Nil(t, parseParam("NULL"))
	assert.Equal(t, "hello world", parseParam("hello world"))
}
