// Package formula is a flat namespace of pure spreadsheet-style helpers:
// text, conditional and logic functions, dataset aggregates, reconciliation
// checks, trade and FX arithmetic and settlement date math.
//
// Aggregates work on a Dataset (named columns plus string rows) and treat
// blank or non-numeric cells as absent. Statistics come from
// montanaflynn/stats.
//
// Registry exposes every helper by lowercase name; the script runtime
// installs it as the global `excel` object.
package formula
