package conn

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   Dialect
	}{
		{"sqlite3", DialectSQLite},
		{"sqlite", DialectSQLite},
		{"postgres", DialectPostgres},
		{"mysql", DialectMySQL},
		{"sqlserver", DialectSQLServer},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := DialectFor(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DialectFor("oracle")
	assert.ErrorContains(t, err, `unsupported driver "oracle"`)
}

func TestRebind(t *testing.T) {
	const query = "SELECT * FROM Person WHERE Person.id = @p2 AND Person.email LIKE '%@p9%' AND Person.age > @p1"
	params := []any{10, 20}

	t.Run("sqlite keeps placeholders and names params", func(t *testing.T) {
		got, args, err := DialectSQLite.Rebind(query, params)
		require.NoError(t, err)
		assert.Equal(t, query, got)
		assert.Equal(t, []any{sql.Named("p1", 10), sql.Named("p2", 20)}, args)
	})

	t.Run("sqlserver matches sqlite", func(t *testing.T) {
		got, args, err := DialectSQLServer.Rebind(query, params)
		require.NoError(t, err)
		assert.Equal(t, query, got)
		assert.Len(t, args, 2)
	})

	t.Run("postgres numbers with dollars", func(t *testing.T) {
		got, args, err := DialectPostgres.Rebind(query, params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM Person WHERE Person.id = $2 AND Person.email LIKE '%@p9%' AND Person.age > $1", got)
		assert.Equal(t, params, args)
	})

	t.Run("mysql reorders by occurrence", func(t *testing.T) {
		got, args, err := DialectMySQL.Rebind(query, params)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM Person WHERE Person.id = ? AND Person.email LIKE '%@p9%' AND Person.age > ?", got)
		assert.Equal(t, []any{20, 10}, args)
	})
}

func TestRebind_BackslashEscapes(t *testing.T) {
	const query = `SELECT * FROM Person WHERE Person.email LIKE '%\' @p1 \\' AND Person.id = @p2`
	params := []any{"x", 5}

	t.Run("mysql skips escaped quotes inside literals", func(t *testing.T) {
		got, args, err := DialectMySQL.Rebind(query, params)
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM Person WHERE Person.email LIKE '%\' @p1 \\' AND Person.id = ?`, got)
		assert.Equal(t, []any{5}, args)
	})

	t.Run("postgres treats backslash as a plain byte", func(t *testing.T) {
		got, _, err := DialectPostgres.Rebind(query, params)
		require.NoError(t, err)
		assert.Equal(t, `SELECT * FROM Person WHERE Person.email LIKE '%\' $1 \\' AND Person.id = @p2`, got)
	})
}

func TestRebind_MultiDigit(t *testing.T) {
	params := make([]any, 12)
	for i := range params {
		params[i] = i + 1
	}
	got, _, err := DialectPostgres.Rebind("x IN (@p1,@p10,@p12)", params)
	require.NoError(t, err)
	assert.Equal(t, "x IN ($1,$10,$12)", got)
}

func TestRebind_NoPlaceholdersPassThrough(t *testing.T) {
	got, args, err := DialectSQLite.Rebind("SELECT 1 WHERE ? = ?", []any{1, 1})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE ? = ?", got)
	assert.Equal(t, []any{1, 1}, args)
}

func TestRebind_MissingParameter(t *testing.T) {
	_, _, err := DialectMySQL.Rebind("x = @p3", []any{1})
	assert.ErrorContains(t, err, "placeholder @p3 has no parameter")
}

func TestRebind_UnknownDialect(t *testing.T) {
	_, _, err := Dialect("db2").Rebind("x = @p1", []any{1})
	assert.Error(t, err)
}
