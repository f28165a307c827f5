/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SessionStartRequest: participant_id, group_id, participant_role?, user_agent?
  - RecordRequest: session_id, image_id, answer, timings, skip/timeout flags
  - SessionFinishRequest: session_id, total_elapsed_ms?

# Response Types

Types for JSON responses:

  - SessionStartResponse: session id, stage metadata, ordered item list
  - SessionItem / SessionStage: one presented image / one stage of a session
  - ConfigResponse (+ ConfigGroup/ConfigMode/ConfigSubset): /api/config payload
  - StatusResponse: {"status":"ok"} acknowledgements
  - ErrorResponse: error, message

# Domain Types

Rows of the three persisted tables:

  - Session: one participant run; started_at set on creation, finished_at once
  - Item: one presented image at a fixed order index within a session
  - Record: the participant's answer for one (session, image), upserted

UserAgent and IPHash fields are never serialized to JSON; they only appear in
CSV exports.
*/
package models
