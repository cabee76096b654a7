package lingocache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text. The digest is
// a pure function of the UTF-8 bytes, so the same source string maps to
// the same hash across processes and runs.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])
}

// CacheKey builds the store key for a text hash and target locale. The
// ":" separator never appears in hex digests or locale codes.
func CacheKey(hash, targetLocale string) string {
	return hash + ":" + targetLocale
}

// TextKey is shorthand for CacheKey(HashText(text), targetLocale).
func TextKey(text, targetLocale string) string {
	return CacheKey(HashText(text), targetLocale)
}
