package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey builds a backend key of the form "prefix:digest". The parts are
// JSON-encoded before hashing, so anything serializable can contribute to a
// key: content hashes, relation names, budgets. The full 256-bit digest is
// kept; search outcomes are expensive enough that collisions are never an
// acceptable trade for shorter keys.
func hashKey(prefix string, parts ...any) string {
	encoded, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(encoded))
}

// Hash returns the SHA-256 digest of data as 64 hex characters.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
