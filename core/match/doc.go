// Package match implements the row matching engine.
//
// A run pairs the rows of a source table with the rows of a target table
// using an ordered list of column rules.
//
// # Keys
//
// Each rule contributes one fragment: the cell under the rule's column on
// that side, translated through the rule's value mapping (source side only),
// trimmed and uppercased unless the rule is case sensitive. Fragments are
// joined with KeyDelimiter. A column missing from the table, or a row too
// short to reach it, contributes an empty fragment instead of failing.
//
// # Consumption
//
// Target rows are indexed by key into FIFO queues ordered by row index. Each
// source row, in row-index order, pops the head of its key's queue, so a
// target row is paired at most once and ties go to the lowest row index.
//
// # Accounting
//
// Every source row ends up in exactly one of Pairs or UnmatchedSource and
// every target row in exactly one of Pairs or UnmatchedTarget.
//
// The engine is synchronous and keeps no state between runs; the index is
// rebuilt on every call.
//
// # Usage
//
//	outcome, err := match.Execute(ctx, match.Job{
//	    SourceTableID: cfg.SourceTableID,
//	    TargetTableID: cfg.TargetTableID,
//	    Rules:         rules,
//	}, tableSource, mappingSource)
package match
