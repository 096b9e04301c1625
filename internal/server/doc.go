// Package server exposes the latest price reading over HTTP.
//
// This package is internal to pricetail and is only started when an HTTP
// port is configured:
//
//   - GET /api/latest: The latest reading as JSON (404 before the first cycle)
//   - GET /api/sse: Server-Sent Events stream of readings
//   - GET /healthz: Liveness probe
//
// The server shuts down gracefully on context cancellation, with a 5-second
// timeout for in-flight requests.
package server
