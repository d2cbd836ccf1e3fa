// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package core assembles the pieces one update endpoint needs: document
store, response writers, loaders with their dispatcher, and the
per-request processor chain. Handlers hold a *Core and go through it
for everything.
*/
package core
