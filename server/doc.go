// Package server exposes a quarry.DB over HTTP with gin.
//
// Routes:
//
//	POST /v1/query   {"query": "SELECT ...", "mode": "list"|"stream", "offset": 0, "maxResults": 0}
//	GET  /v1/types   registered entity types and their fields
//	GET  /healthz    liveness
//	GET  /metrics    Prometheus metrics, when WithMetricsHandler is set
//
// List mode answers {"fields": [...], "tuples": [[...], ...]}. Stream mode answers
// newline-delimited JSON, one tuple per line; a failure after the first line is
// reported as a final {"error": "..."} line.
package server
