// Package database handles row store connections, schema migration and
// schema inspection.
//
// It wraps GORM so that the same code runs against SQLite (the default, also
// used by tests and the SQL scratch database) and MySQL.
//
// # Connect
//
// Connect picks the dialector from Config.Driver. SQLite pools are limited to a
// single connection, so callers must run every statement of a transaction on
// the transaction handle.
//
// # Errors
//
// ErrNotFound and ErrConflict are the sentinels shared by every store. Translate
// converts gorm.ErrRecordNotFound into ErrNotFound.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "data_tables")
package database
