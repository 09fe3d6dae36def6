// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key) for the /v1 routes.
//   - rayid: a unique request id (X-Ray-ID) stored in the context and echoed
//     on the response, picked up by logger.WithRayID.
//
// RayID is registered first so every later log line carries the id.
package middleware
