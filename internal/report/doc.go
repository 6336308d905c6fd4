// Package report records scan and knit session history in a local SQLite
// database: one row per session plus one row per track outcome, queryable
// from the CLI after the fact.
package report
