/*
Package db opens the relational store and manages its schema.

# Drivers

Two drivers are supported, selected by DATABASE_TYPE:

  - sqlite (default): modernc.org/sqlite, cgo-free; WAL mode, foreign keys
    and a busy timeout are applied on open
  - postgres: lib/pq

All application SQL uses $1-style placeholders, which both drivers accept,
and avoids driver-specific types (timestamps are fixed-width UTC text so
lexicographic ORDER BY matches time order, booleans are 0/1 integers).

# Migrations

Schema changes ship as embedded, versioned SQL files under migrations/ and
are applied in one transaction by Migrate. Applied versions are recorded in
the schema_migrations table, so Migrate is safe to run on every startup.
*/
package db
