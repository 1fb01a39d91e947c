// Package imports stages uploaded spreadsheets, previews them and turns
// confirmed sheets into stored tables.
//
// Uploads live in a TTL store keyed by an opaque id until they are confirmed,
// discarded or expire. Confirmed uploads are archived to object storage when
// it is enabled.
package imports
