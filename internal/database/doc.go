// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package database manages the GORM connection pool behind the SQL index
stores, with health checks, pool statistics, and transaction retries.

# Overview

PoolManager wraps a GORM handle and its underlying sql.DB, applying the
configured idle, open, and lifetime limits in one place. An optional
background loop pings the database on an interval and logs pool health
through zap.

# Core types

  - PoolManager: holds the GORM DB and the raw sql.DB, with DB(),
    Ping(), Stats(), and Close() lifecycle methods.
  - PoolConfig: idle/open connection limits, connection lifetime,
    idle timeout, and the health check interval.
  - PoolStats: a JSON-friendly statistics snapshot.
  - TransactionFunc: the callback type for transactional work.

# Transactions

WithTransaction runs a callback in a single transaction.
WithTransactionRetry adds exponential backoff for transient failures
such as deadlocks and serialization errors, which matters when several
ingest requests commit against the same table.
*/
package database
