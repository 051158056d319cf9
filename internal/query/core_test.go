package query

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/filter"
	"github.com/roach88/joinery/internal/testutil"
)

func TestCore_FilterEq(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)

	_, err := q.Filter(s.Person.MustCol("id").Eq(5))
	require.NoError(t, err)

	sql, params := q.SQL()
	assert.Equal(t,
		`SELECT Person.id AS "Person.id",Person.email AS "Person.email",Person.age AS "Person.age" FROM Person WHERE  Person.id = @p1`,
		sql)
	assert.Equal(t, []any{5}, params)
}

func TestCore_NoFiltersNoWhere(t *testing.T) {
	s := testutil.NewSchema(t)
	sql, params := New(s.Person).SQL()
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "ORDER BY")
	assert.Empty(t, params)
}

func TestCore_LeftJoinText(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)

	_, err := q.LeftJoin(s.Posts)
	require.NoError(t, err)
	assert.Equal(t, " LEFT JOIN Posts ON Posts.person_id = Person.id", q.joins)
	assert.Equal(t, []string{"Person", "Posts"}, tableNames(q))
	assert.True(t, q.Joined("Posts"))
}

func TestCore_JoinKinds(t *testing.T) {
	s := testutil.NewSchema(t)

	tests := []struct {
		name string
		join func(*Core) (*Core, error)
		want string
	}{
		{"left", func(q *Core) (*Core, error) { return q.LeftJoin(s.Posts) }, " LEFT JOIN "},
		{"right", func(q *Core) (*Core, error) { return q.RightJoin(s.Posts) }, " RIGHT JOIN "},
		{"outer", func(q *Core) (*Core, error) { return q.OuterJoin(s.Posts) }, " OUTER JOIN "},
		{"inner", func(q *Core) (*Core, error) { return q.InnerJoin(s.Posts) }, " INNER JOIN "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := tt.join(New(s.Person))
			require.NoError(t, err)
			assert.Equal(t, tt.want+"Posts ON Posts.person_id = Person.id", q.joins)
		})
	}
}

func TestCore_JoinTwiceFails(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)
	_, err := q.LeftJoin(s.Posts)
	require.NoError(t, err)
	before, beforeParams := q.SQL()

	_, err = q.InnerJoin(s.Posts)
	require.Error(t, err)
	assert.True(t, errs.IsAlreadyJoined(err))

	_, err = q.LeftJoin(s.Person)
	assert.True(t, errs.IsAlreadyJoined(err), "root counts as joined")

	after, afterParams := q.SQL()
	assert.Equal(t, before, after, "failed join leaves the builder unchanged")
	assert.Equal(t, beforeParams, afterParams)
}

func TestCore_UnknownRelation(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)

	_, err := q.LeftJoin(s.Tags)
	require.Error(t, err)
	assert.True(t, errs.IsUnknownRelation(err))
	assert.False(t, q.Joined("Tags"))
	assert.Empty(t, q.joins)
	assert.Len(t, q.Tables(), 1)
}

func TestCore_TableNotJoined(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)

	_, err := q.Filter(s.Posts.MustCol("title").Eq("hello"))
	require.Error(t, err)
	assert.True(t, errs.IsTableNotJoined(err))
	assert.Contains(t, err.Error(), "filter applies to table Posts")

	_, err = q.OrderByAsc(s.Posts.MustCol("id"))
	require.Error(t, err)
	assert.True(t, errs.IsTableNotJoined(err))

	sql, params := q.SQL()
	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "ORDER BY")
	assert.Empty(t, params)
}

func TestCore_CompileErrorLeavesBuilderUnchanged(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)

	_, err := q.Filter(filter.Expr{Column: s.Person.MustCol("id")})
	assert.ErrorContains(t, err, "compile filter")
	assert.Empty(t, q.filters)
	assert.Zero(t, q.binder.Counter())
}

func TestCore_PlaceholdersShareOneCounter(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)
	_, err := q.LeftJoin(s.Posts)
	require.NoError(t, err)

	id, age, title := s.Person.MustCol("id"), s.Person.MustCol("age"), s.Posts.MustCol("title")
	for _, e := range []filter.Expr{
		id.In(1, 2, 3),
		age.Between(18, 30),
		title.Eq("hello").Or(title.Eq("again")),
		id.Neq(9),
	} {
		_, err := q.Filter(e)
		require.NoError(t, err)
	}

	sql, params := q.SQL()
	assert.Contains(t, sql, "Person.id IN (@p1,@p2,@p3) AND Person.age BETWEEN @p4 AND @p5 AND (  Posts.title = @p6 OR  Posts.title = @p7 ) AND  Person.id <> @p8")
	assert.Equal(t, []any{1, 2, 3, 18, 30, "hello", "again", 9}, params)
}

func TestCore_OrderBy(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)
	_, err := q.OrderByDesc(s.Person.MustCol("age"))
	require.NoError(t, err)
	_, err = q.OrderByAsc(s.Person.MustCol("id"))
	require.NoError(t, err)

	sql, _ := q.SQL()
	assert.Contains(t, sql, " ORDER BY Person.age DESC, Person.id ASC")
}

func TestCore_ComposedGolden(t *testing.T) {
	s := testutil.NewSchema(t)
	q := New(s.Person)
	steps := []func() (*Core, error){
		func() (*Core, error) { return q.LeftJoin(s.Posts) },
		func() (*Core, error) { return q.Filter(s.Person.MustCol("email").IsNotNull()) },
		func() (*Core, error) {
			return q.Filter(s.Posts.MustCol("title").StartsWith("he").Or(s.Posts.MustCol("id").In(11, 12)))
		},
		func() (*Core, error) { return q.OrderByAsc(s.Person.MustCol("id")) },
		func() (*Core, error) { return q.OrderByDesc(s.Posts.MustCol("id")) },
	}
	for _, step := range steps {
		_, err := step()
		require.NoError(t, err)
	}

	sql, params := q.SQL()
	testutil.AssertGolden(t, "person_left_join_posts", []byte(sql))
	assert.Equal(t, []any{11, 12}, params)
}

func TestCore_AlternateOnUnjoinedTableWarns(t *testing.T) {
	s := testutil.NewSchema(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	q := New(s.Person, WithLogger(logger))

	_, err := q.Filter(s.Person.MustCol("id").Eq(1).Or(s.Posts.MustCol("id").Eq(2)))
	require.NoError(t, err, "alternates are not rejected")
	assert.Contains(t, logs.String(), "references table Posts which is not joined")

	sql, _ := q.SQL()
	assert.Contains(t, sql, "(  Person.id = @p1 OR  Posts.id = @p2 )")
}

func TestCore_Raw(t *testing.T) {
	s := testutil.NewSchema(t)
	q := Raw(s.Person, `SELECT id AS "Person.id" FROM Person WHERE id = @p1`, []any{3})

	sql, params := q.SQL()
	assert.Equal(t, `SELECT id AS "Person.id" FROM Person WHERE id = @p1`, sql)
	assert.Equal(t, []any{3}, params)
	assert.True(t, q.IsRaw())

	_, err := q.LeftJoin(s.Posts)
	assert.ErrorIs(t, err, errRawQuery)
	_, err = q.Filter(s.Person.MustCol("id").Eq(1))
	assert.ErrorIs(t, err, errRawQuery)
	_, err = q.OrderByAsc(s.Person.MustCol("id"))
	assert.ErrorIs(t, err, errRawQuery)
}

func TestCore_CloneIsIndependent(t *testing.T) {
	s := testutil.NewSchema(t)
	base := New(s.Person)
	_, err := base.Filter(s.Person.MustCol("id").Gt(0))
	require.NoError(t, err)

	branch := base.Clone()
	_, err = branch.LeftJoin(s.Posts)
	require.NoError(t, err)
	_, err = branch.Filter(s.Posts.MustCol("id").Eq(10))
	require.NoError(t, err)

	_, baseParams := base.SQL()
	branchSQL, branchParams := branch.SQL()
	assert.Equal(t, []any{0}, baseParams)
	assert.Equal(t, []any{0, 10}, branchParams)
	assert.Contains(t, branchSQL, " AND  Posts.id = @p2")
	assert.False(t, base.Joined("Posts"))
}

func TestParseJoinKind(t *testing.T) {
	k, err := ParseJoinKind(" left ")
	require.NoError(t, err)
	assert.Equal(t, JoinLeft, k)

	_, err = ParseJoinKind("cross")
	assert.Error(t, err)
}

func tableNames(q *Core) []string {
	var names []string
	for _, t := range q.Tables() {
		names = append(names, t.QualifiedName())
	}
	return names
}
