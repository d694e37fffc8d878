// Vesseltrack - Vessel Position Ingestion and Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vesseltrack

/*
Package middleware provides the request-scoped HTTP middleware of the read API.

  - RequestID: X-Request-ID propagation into the logging context
  - RequestLogger: one structured log line per request
  - PrometheusMetrics: request count and latency labelled by chi route pattern

All three are plain func(http.Handler) http.Handler values for chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    ...
	})

CORS, rate limiting and compression come from go-chi/cors, go-chi/httprate
and chi's own middleware package and are assembled in the api package.
*/
package middleware
