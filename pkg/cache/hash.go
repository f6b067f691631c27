package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. The runner hashes the raw table
// bytes, so a re-saved but unchanged table still hits the cache; the HTTP
// server reports the same value so clients can correlate uploads.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "<kind>:<hash>" from the JSON encoding of parts. Any
// option that changes an output must be part of parts.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
