// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package types provides the shared type definitions for indexd.

types is the lowest-level package: it depends on no internal package and
gives the ingest, update, index, and api layers a single contract for
documents and errors, avoiding import cycles.

Core types:

  - Document: an indexable unit (ID plus named field values)
  - Error / ErrorCode: structured errors with HTTP status and Retryable marks
  - Context helpers: WithTraceID / WithRequestID / WithTenantID propagation
*/
package types
