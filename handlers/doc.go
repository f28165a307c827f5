/*
Package handlers contains the HTTP request handlers of the experiment API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - ConfigHandler: experiment definition for the frontend (GET /api/config)
  - SessionHandler: session provisioning, resume and finish
  - RecordHandler: per-item answer upsert
  - ExportHandler: streamed CSV export
  - ImagesHandler: image file serving

	sessionHandler := handlers.NewSessionHandler(db, cfg, loader)

# Session Lifecycle

	POST /api/session/start  → StartSession (resume or materialize items)
	POST /api/record         → SubmitRecord (upsert per (session, image))
	POST /api/session/finish → FinishSession (idempotent finished_at)

Starting a session expands the group's stage sequence into one ordered item
list. Stages whose mode has randomize=true are shuffled with a seed derived
from (session id, stage index), so the ordering is reproducible per session
and independent across stages. Order indices are global across stages,
starting at 0.

When the config allows resume, the participant's latest unfinished session
for the group is returned verbatim: stored items in stored order, stage
labels and instructions from the live config.

# Records and Export

A record write is transactional; the CSV snapshot that follows it is
best-effort and its failure never affects the response. The on-demand export
streams the same column set with optional group/mode/session/participant
filters.
*/
package handlers
