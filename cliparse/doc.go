/*
Package cliparse parses server configuration from CLI flags and environment
variables. Flags take precedence; a .env file in the working directory is
loaded before the environment is consulted.

# Settings

  - PORT (-p): listen port (default 8000)
  - DATABASE_URL (-d): DSN for postgres, file path for sqlite
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - EXPERIMENT_CONFIG_PATH (-c): experiment JSON document
    (default config/experiment.json)
  - EXPERIMENT_PROJECT_ROOT (-r): overrides the root against which relative
    image directories resolve
  - ALLOW_ORIGINS (--origins): comma-separated CORS origins (default "*")
  - IP_HASH_SECRET: required; HMAC key for participant IP hashing
  - AUTO_EXPORT_ENABLED / AUTO_EXPORT_DIR / AUTO_EXPORT_FILENAME: CSV snapshot
    written after every record write (default true / exports / records.csv)

Configuration errors abort startup; there are no silent fallbacks for the
required secret.
*/
package cliparse
