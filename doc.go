/*
Package main provides the entry point for the Human-AI comparison
experiment API server.

The server issues randomized, resumable image sequences to experiment
participants, records their per-item answers and timings, and exports
results to CSV.

# Starting the Server

The server runs on sqlite by default and needs the IP hashing secret:

	IP_HASH_SECRET=... go run main.go

With PostgreSQL:

	IP_HASH_SECRET=... go run main.go -t postgres -d "postgres://..."

# Configuration

Required settings:

  - IP_HASH_SECRET: secret for participant IP hashing

Optional settings:

  - PORT (-p): server port (default: 8000)
  - DATABASE_URL (-d) / DATABASE_TYPE (-t): store location and driver
  - EXPERIMENT_CONFIG_PATH (-c): experiment JSON document
  - EXPERIMENT_PROJECT_ROOT (-r): root for relative image directories
  - ALLOW_ORIGINS (--origins): CORS origins
  - AUTO_EXPORT_ENABLED / AUTO_EXPORT_DIR / AUTO_EXPORT_FILENAME

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (config, session, record, export, images)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - experiment: config document, image catalog, deterministic shuffle
  - exporter: CSV streaming and auto-snapshots
  - auth: IP hashing and shuffle seeds
  - db: drivers, migrations, time encoding
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
