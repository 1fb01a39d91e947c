// Package processes saves reusable operations and chains of them.
//
// A saved process is a match, sql, script or export operation with a typed,
// versioned config. A chain is an ordered list of such steps; running it
// executes the steps one by one and skips the rest after the first failure.
//
// # HTTP Endpoints
//
//   - GET, POST /processes/chains
//   - GET, PUT, DELETE /processes/chains/:id
//   - POST /processes/chains/:id/run : Run a chain.
//   - GET, POST /processes
//   - GET, PUT, DELETE /processes/:id
//   - POST /processes/:id/run : Run one saved process.
package processes
