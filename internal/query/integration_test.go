package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinery/internal/filter"
	"github.com/roach88/joinery/internal/projection"
	"github.com/roach88/joinery/internal/schema"
	"github.com/roach88/joinery/internal/testutil"
)

func TestSQLite_LeftJoinTuple(t *testing.T) {
	s := testutil.NewSchema(t)
	db := testutil.OpenDB(t)
	ctx := context.Background()

	q := New(s.Person)
	_, err := q.LeftJoin(s.Posts)
	require.NoError(t, err)
	_, err = q.OrderByAsc(s.Person.MustCol("id"))
	require.NoError(t, err)
	_, err = q.OrderByAsc(s.Posts.MustCol("id"))
	require.NoError(t, err)

	dec := projection.Tuple(
		projection.Any(projection.Struct[person](s.Person)),
		projection.Any(projection.Optional(projection.Struct[post](s.Posts), s.Posts)),
	)
	rows, err := All(ctx, q, db, dec)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	type pair struct {
		person int64
		post   int64 // 0 when unmatched
	}
	var got []pair
	for _, r := range rows {
		p := pair{person: r[0].(person).ID}
		if po := r[1].(*post); po != nil {
			p.post = po.ID
		}
		got = append(got, p)
	}
	assert.Equal(t, []pair{{1, 10}, {1, 11}, {2, 0}, {3, 12}}, got)
}

func TestSQLite_Filters(t *testing.T) {
	s := testutil.NewSchema(t)
	db := testutil.OpenDB(t)
	ctx := context.Background()
	dec := projection.Struct[person](s.Person)

	email, age, id := s.Person.MustCol("email"), s.Person.MustCol("age"), s.Person.MustCol("id")

	tests := []struct {
		name string
		q    func() *Core
		want []int64
	}{
		{"eq", func() *Core { return filtered(t, s.Person, id.Eq(2)) }, []int64{2}},
		{"is null", func() *Core { return filtered(t, s.Person, email.IsNull()) }, []int64{2}},
		{"contains", func() *Core { return filtered(t, s.Person, email.Contains("@x.")) }, []int64{1, 3}},
		{"starts with", func() *Core { return filtered(t, s.Person, email.StartsWith("c")) }, []int64{3}},
		{"in", func() *Core { return filtered(t, s.Person, id.In(1, 3, 99)) }, []int64{1, 3}},
		{"empty in", func() *Core { return filtered(t, s.Person, id.In()) }, nil},
		{"between", func() *Core { return filtered(t, s.Person, age.Between(18, 40)) }, []int64{1}},
		{"or", func() *Core { return filtered(t, s.Person, age.Lt(18).Or(age.IsNull())) }, []int64{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.q()
			_, err := q.OrderByAsc(id)
			require.NoError(t, err)

			people, err := All(ctx, q, db, dec)
			require.NoError(t, err)
			var ids []int64
			for _, p := range people {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSQLite_LikeWithQuote(t *testing.T) {
	s := testutil.NewSchema(t)
	db := testutil.OpenDB(t)

	q := New(s.Posts)
	_, err := q.Filter(s.Posts.MustCol("title").Contains("it's"))
	require.NoError(t, err)

	posts, err := All(context.Background(), q, db, projection.Struct[post](s.Posts))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, int64(12), posts[0].ID)
}

func TestSQLite_RawAndFrames(t *testing.T) {
	s := testutil.NewSchema(t)
	db := testutil.OpenDB(t)
	ctx := context.Background()

	raw := Raw(s.Person,
		`SELECT id AS "Person.id", email AS "Person.email", age AS "Person.age" FROM Person WHERE id >= @p1 ORDER BY id`,
		[]any{2})
	frames, err := raw.Frames(ctx, db)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, 2, frames[0].Len())

	ids, _ := frames[0].Column("id")
	assert.Equal(t, []any{int64(2), int64(3)}, ids.Values)

	first, ok, err := One(ctx, raw, db, projection.Map(s.Person))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, first["email"])
}

func filtered(t *testing.T, root *schema.Table, exprs ...filter.Expr) *Core {
	t.Helper()
	q := New(root)
	for _, e := range exprs {
		_, err := q.Filter(e)
		require.NoError(t, err)
	}
	return q
}
