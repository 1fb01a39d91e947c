// Package matching stores match configurations, runs them through the
// core/match engine and keeps every execution as an immutable result.
//
// A configuration names a source and a target table and an ordered list of
// column rules. Executing it loads both tables, pairs rows by composite key
// and stores one MatchResult holding the matched pairs and both unmatched
// sets. Nothing is stored when the run fails.
//
// # HTTP Endpoints
//
//   - GET, POST /match-configs
//   - GET, PUT, DELETE /match-configs/:id
//   - POST /matching/execute : Run a configuration.
//   - GET /matching/results : Newest first (config_id, limit 1-100).
//   - GET, DELETE /matching/results/:id
package matching
