// Package api is the HTTP adapter over the store and importer.
//
// Routes:
//
//	GET  /api/airdrops  ranked listing; query params chain, status, q, riskMin, riskMax, sort
//	POST /api/import    {"items":[...]} applied as one batch
//	GET  /healthz       row counts
//	GET  /metrics       Prometheus exposition
//
// Query parameters are parsed leniently: an unknown status is ignored, an
// unknown sort falls back to rank, and non-numeric risk bounds are ignored.
// The handlers hold no domain logic; filtering, scoring and validation live
// in the core packages.
package api
