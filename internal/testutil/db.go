package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/joinery/internal/conn"
)

const fixtureDDL = `
CREATE TABLE Person (
	id    INTEGER PRIMARY KEY,
	email TEXT,
	age   INTEGER
);
CREATE TABLE Posts (
	id        INTEGER PRIMARY KEY,
	person_id INTEGER NOT NULL REFERENCES Person(id),
	title     TEXT NOT NULL
);
CREATE TABLE Tags (
	id    INTEGER PRIMARY KEY,
	label TEXT NOT NULL
);
INSERT INTO Person (id, email, age) VALUES
	(1, 'a@x.com', 30),
	(2, NULL, 17),
	(3, 'c@x.com', NULL);
INSERT INTO Posts (id, person_id, title) VALUES
	(10, 1, 'hello'),
	(11, 1, 'again'),
	(12, 3, 'it''s me');
`

// OpenDB opens a seeded SQLite database in a temporary directory.
//
// Person rows: 1 a@x.com age 30, 2 with NULL email age 17, 3 c@x.com with
// NULL age. Posts: 10 and 11 by person 1, 12 by person 3.
//
// The database is closed when the test finishes.
func OpenDB(t testing.TB) *conn.DB {
	t.Helper()
	ctx := context.Background()

	db, err := conn.Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "joinery.db"))
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { db.Close() })

	_, err = db.SQLDB().ExecContext(ctx, fixtureDDL)
	require.NoError(t, err, "seed test database")
	return db
}
