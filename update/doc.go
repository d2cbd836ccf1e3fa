// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package update defines the commands a loader emits and the processor
chain that carries them to the document store.

Loaders translate request payloads into AddCommand, DeleteCommand,
CommitCommand, and RollbackCommand values and feed them to a
Processor. Processors form a per-request decorator chain built from a
Chain of factories; each link handles what it cares about and forwards
the rest. The chain ends in RunProcessor, which applies commands to an
index.Store.

The stock chain (DefaultChain) is Log -> UUID -> Run: one summary log
line per request, with generated IDs for documents that arrive
without one.
*/
package update
