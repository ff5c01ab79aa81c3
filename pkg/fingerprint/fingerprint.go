package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Compute returns the hex-encoded SHA-256 digest of the trimmed content.
// Surrounding whitespace is stripped first so that trailing-whitespace-only
// edits do not produce a new fingerprint.
func Compute(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether content hashes to the given fingerprint.
func Matches(content, fp string) bool {
	return fp != "" && Compute(content) == fp
}
