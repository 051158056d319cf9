// Package testutil provides shared fixtures for joinery tests: the
// Person/Posts schema, a seeded SQLite database, scripted cursors and
// golden-file assertions.
package testutil
