// Package exports renders tables, match results and ad-hoc query output as
// xlsx workbooks or CSV.
package exports
