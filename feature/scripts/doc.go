// Package scripts runs user JavaScript against stored tables in a goja VM.
//
// A script sees three globals: tables (datasets keyed by table key), excel
// (the formula helpers) and print/console.log. Assigning to result returns
// tabular data to the caller.
package scripts
