// Copyright (c) IndexD Authors.
// Licensed under the MIT License.

/*
Package migration manages database schema migrations for the documents
table, supporting PostgreSQL, MySQL and SQLite through golang-migrate.

# Overview

SQL migration files for each dialect are embedded via embed.FS and run
through the golang-migrate engine for versioned schema management. The
package supports forward migration, rollback, stepwise execution,
jumping to a specific version and forcing the version number.

# Core interfaces and types

  - Migrator: the migration interface, defining the full operation set
    Up/Down/DownAll/Steps/Goto/Force/Version/Status/Info/Close.
  - DefaultMigrator: the default Migrator implementation, wrapping the
    golang-migrate instance and database connection management.
  - Config: migration settings covering database type, connection URL,
    migrations table name and lock timeout.
  - DatabaseType: the database type enum (postgres/mysql/sqlite).
  - MigrationStatus / MigrationInfo: per-migration state and summary.
  - CLI: the command-line layer wrapping a Migrator with formatted
    output.

# Capabilities

  - Multi-database support: the dialect is selected by DatabaseType and
    the matching embedded SQL files. SQLite uses the pure-Go driver.
  - Factory functions: NewMigratorFromConfig / NewMigratorFromStoreConfig /
    NewMigratorFromURL build migrators from the various config sources.
  - CLI integration: the CLI type offers RunUp/RunDown/RunStatus/RunInfo
    and friends for terminal use.
  - Helpers: ParseDatabaseType parses type strings and BuildDatabaseURL
    assembles connection URLs per dialect.
*/
package migration
