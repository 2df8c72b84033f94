// Package server wraps a Gin engine in an http.Server with h2c support,
// the standard middleware stack (recovery, request-id, CORS, body-size
// limit, request logging, metrics, optional rate limit), and the default
// operational endpoints.
//
// Route registration happens on the exposed Gin engine; the api package
// mounts the application routes there.
package server
