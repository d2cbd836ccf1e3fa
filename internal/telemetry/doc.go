// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

// Package telemetry wraps OpenTelemetry SDK initialization, providing
// centralized TracerProvider and MeterProvider setup for IndexD.
// When telemetry is disabled the noop implementations are used and no
// external service is contacted.
package telemetry
