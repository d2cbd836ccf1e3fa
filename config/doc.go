// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

// Package config provides configuration management for indexd.
//
// Configuration is assembled from defaults, an optional YAML file, and
// environment variable overrides, in that order of precedence. The
// Loader builder wires the three sources together and runs validators
// before the configuration is handed to the rest of the service.
package config
