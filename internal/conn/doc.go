// Package conn is the connection boundary between the query engine and a
// database/sql driver.
//
// A Querier runs compiled SQL and returns a Cursor that yields data rows
// and result-set metadata markers. *DB is the database/sql backed Querier;
// tests script Cursors directly or run *DB over go-sqlmock.
//
// Statements arrive with "@pN" placeholders. Each Dialect rewrites them into
// what its driver understands before the statement is sent:
//
//   - sqlite and sqlserver keep "@pN" and bind sql.Named("pN", v)
//   - postgres uses "$N"
//   - mysql uses "?" with parameters reordered by occurrence
//
// Driver failures are wrapped once, here, as DRIVER_ERROR.
package conn
