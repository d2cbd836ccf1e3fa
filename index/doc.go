// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package index stores documents behind a single Store interface with
staged-commit semantics.

Writes (Put, Delete, DeleteQuery) stage changes that become durable
only on Commit; Rollback discards everything staged. Get is a
real-time read that sees staged changes before committed state, while
Count reflects committed state only.

Backends:

  - memory: process-local map, the default
  - sqlite / mysql / postgres: GORM over a pooled connection
  - redis: JSON values under doc:<id> keys
  - mongo: one BSON document per indexed document

Open selects a backend from config.StoreConfig. All backends share the
same delete-query dialect: "*:*" clears the index, "field:value"
removes documents whose field matches the value.
*/
package index
