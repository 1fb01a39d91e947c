// Package relationships records lookup, foreign key and match links between
// columns of stored tables. Relationships are removed together with either
// table.
package relationships
