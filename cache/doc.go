// Package cache stores the raw row store of a worklog pipeline between
// sessions.
//
// Memory keeps the rows in process and is meant for tests and short lived
// tools. SQLite persists them in a single database file using the pure Go
// modernc.org/sqlite driver, one column per catalog field.
package cache
