// Package httpapi exposes the recommendation service as a JSON API over a
// chi router. Every response is wrapped in an envelope with a status, the
// data and, on failure, an error code and message.
//
//	GET /healthz
//	GET /metrics
//	GET /api/v1/titles
//	GET /api/v1/titles/candidates?title=
//	GET /api/v1/recommendations?title=&index=&k=
//	GET /api/v1/movies/{index}
//	GET /api/v1/movies/{index}/tags
package httpapi
