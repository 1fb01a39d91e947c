// Package middleware contains HTTP middleware for the Fiber application.
//
//   - auth: API key validation for the /api routes.
//   - rayid: request id generation, stored in locals and echoed in X-Ray-ID.
package middleware
