// Package handler implements the sentinel REST API.
//
// Handlers are thin: they decode requests, call the store, scanner or
// policy service, and map domain error kinds to status codes
// (validation 400, not found 404, conflict and busy 409, anything else
// 500 with a generic message). Error bodies are {error, details}.
//
// Middleware provides panic recovery, CORS and request logging.
package handler
