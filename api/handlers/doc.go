// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package handlers implements the HTTP request handlers for the indexd API.

# Overview

The handlers package contains the endpoint glue for document ingestion,
realtime lookup, and service health. Update endpoints derive content
streams from the request and feed them through the ingest dispatcher;
everything else renders the shared JSON envelope.

# Core types

  - UpdateHandler    — ingestion endpoint carrying per-path preset parameters
  - GetHandler       — realtime get by document id
  - HealthHandler    — service health (/health, /healthz, /ready, /version)
  - Response         — shared JSON envelope (success + data + error + timestamp)
  - ErrorInfo        — structured error body with code, message, retryable flag
  - ResponseWriter   — http.ResponseWriter wrapper capturing the status code
  - HealthCheck      — pluggable readiness check interface

# Capabilities

  - Envelope helpers: WriteSuccess / WriteError / WriteJSON
  - ErrorCode to HTTP status mapping (415 for unsupported media types)
  - Content streams from raw bodies, stream.body parameters, and multipart parts
  - Post-stream commit, optimize, and rollback directives
  - Response serialization through the registered wt writers
*/
package handlers
