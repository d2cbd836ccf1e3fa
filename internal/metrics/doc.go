// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package metrics provides prometheus metrics collection across the
HTTP, dispatch, update command, and store dimensions.

# Overview

The package registers its metrics through promauto under a single
namespace, so no manual registry management is needed. Labels keep the
cardinality small: paths, content types, command kinds, backends, and
bucketed status classes.

# Core types

  - Collector: owns every Counter, Histogram, and Gauge vector,
    grouped by concern.
  - InstrumentedStore: a store decorator timing every operation and
    refreshing the committed-document gauge after commits.

# Capabilities

  - HTTP metrics: request totals, duration, request/response sizes,
    grouped by method/path/status class.
  - Dispatch metrics: totals and duration by content type and outcome,
    fed through the dispatcher's observer hook.
  - Update command counters by kind and status, recorded by the
    ProcessorFactory chain link.
  - Store metrics: operation durations and the committed document
    count, grouped by backend.
*/
package metrics
