// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package server manages the HTTP/HTTPS server lifecycle with non-blocking
startup, graceful shutdown and system signal handling.

# Overview

The package wraps net/http.Server in a Manager that owns listening,
serving, shutdown and error propagation. Both plain HTTP and TLS startup
are supported, SIGINT/SIGTERM handling is built in, and the listener can
be capped to a maximum number of concurrent connections.

# Core types

  - Manager: the server manager, holding the http.Server, net.Listener
    and an asynchronous error channel, with Start/StartTLS/Shutdown/
    WaitForShutdown lifecycle methods.
  - Config: server settings covering the listen address, read/write
    timeouts, idle timeout, maximum header size, connection cap and
    graceful shutdown timeout.

# Capabilities

  - Non-blocking startup: Start/StartTLS serve from a background
    goroutine, leaving the caller free to continue.
  - Graceful shutdown: Shutdown drains in-flight requests and releases
    connections within the configured timeout.
  - Signal handling: WaitForShutdown blocks on SIGINT/SIGTERM and
    triggers the graceful shutdown path when a signal arrives.
  - Error propagation: Errors() exposes an asynchronous error channel
    for callers monitoring serve failures.
  - Connection cap: MaxConns > 0 wraps the listener with
    netutil.LimitListener to bound concurrent connections.
  - State queries: IsRunning/Addr report run state and listen address.
*/
package server
