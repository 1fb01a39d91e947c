// Package sqlexec runs ad-hoc SQL over stored tables.
//
// Every query gets its own in-memory SQLite database with the requested
// tables copied in as TEXT columns, so queries never touch the row store.
package sqlexec
