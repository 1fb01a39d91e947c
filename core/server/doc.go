// Package server holds the HTTP server configuration, the fiber application
// factory and the error conventions shared by every feature handler.
//
// Handlers return service errors through Fail, which maps
// database.ErrNotFound to 404, database.ErrConflict and ErrInvalidRequest to
// 400 and everything else to 500. Request bodies go through Bind, which runs
// go-playground/validator over the DTO struct tags.
package server
