// Package tables is the generic row store.
//
// A table is identified by a unique key and owns an ordered list of column
// names and an ordered list of rows. Each row is a fixed-width sequence of
// string cells; rows are padded or truncated to the column count on write
// and on read.
//
// Other features attach dependent records (match configurations,
// relationships) through OnDelete hooks that run in the same transaction as
// the table removal.
//
// # HTTP Endpoints
//
//   - GET /tables : List summaries (category, source_type, skip, limit).
//   - POST /tables : Create a master table.
//   - GET /tables/:key : Table with columns and data.
//   - PUT /tables/:key : Update metadata and optionally replace data.
//   - PUT /tables/:key/data : Replace columns and data.
//   - DELETE /tables/:key : Delete the table and its dependents.
package tables
