/*
Package auth provides the privacy and determinism primitives of the API.

# IP Hashing

Participant IP addresses are never stored in the clear. HashIP computes an
HMAC-SHA256 digest keyed by the IP_HASH_SECRET setting:

	digest := auth.HashIP(clientIP, cfg.IPHashSecret)

The digest allows deduplication across sessions without being reversible.

# Shuffle Seeds

ShuffleSeed maps (session id, stage index) to the int64 seed used for the
per-stage item shuffle:

	seed := auth.ShuffleSeed(sessionID, stageIndex)

The mapping is pure, so a stage's ordering can be reproduced from the session
id alone, and no two stages of one session share a seed.
*/
package auth
