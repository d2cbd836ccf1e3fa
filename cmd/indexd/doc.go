// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package main provides the IndexD server entry point.

# Overview

cmd/indexd is the executable entry of the IndexD document ingestion
service. It serves the HTTP update endpoints, runs database schema
migrations, and answers health and version queries. The program loads
YAML configuration, logs through zap, and exports Prometheus metrics
on a dedicated port.

# Core types

  - Server         — main server, owns the HTTP and metrics ports and graceful shutdown
  - endpoint       — update route descriptor pairing a path with its preset parameters
  - Middleware     — HTTP middleware signature func(http.Handler) http.Handler
  - responseWriter — wraps http.ResponseWriter to capture the status code

# Capabilities

  - Subcommands: serve (run the service), migrate (schema migrations), version, health
  - Update routes: /update, /update/json, /update/csv, /update/json/docs,
    each pinning content type through preset request parameters
  - Middleware chain: Recovery, RequestID, SecurityHeaders, RequestLogger,
    MetricsMiddleware, OTelTracing, CORS, BodyLimit, RateLimiter (per IP),
    APIKeyAuth (X-API-Key), JWTAuth (HS256/RS256 Bearer tokens)
  - Metrics server: /metrics (Prometheus) on its own port
  - Graceful shutdown: signal wait, stop HTTP, stop metrics, close store, flush telemetry
  - Build injection: Version, BuildTime, GitCommit set via ldflags
*/
package main
