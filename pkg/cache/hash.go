package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash computes a SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key joins parts into a cache key: "prefix:part1:part2...".
// Parts are used verbatim; backends that need safe names hash the key.
func Key(prefix string, parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}
