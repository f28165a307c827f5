package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strconv"
)

// HashIP creates a one-way hash of an IP address for privacy.
// Includes a secret to prevent rainbow table attacks. Empty input maps to
// empty output so callers can store NULL for unknown addresses.
func HashIP(ip, secret string) string {
	if ip == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))
}

// ShuffleSeed derives the deterministic shuffle seed for one stage of a
// session. Hashing (session id, stage index) guarantees that regenerating the
// same stage reproduces the same order, while different stages and different
// sessions get independent orderings.
func ShuffleSeed(sessionID string, stageIndex int) int64 {
	h := sha256.New()
	h.Write([]byte(sessionID))
	h.Write([]byte(":"))
	h.Write([]byte(strconv.Itoa(stageIndex)))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
