package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// fingerprintSeparator sits between the path and the content in the hash input.
const fingerprintSeparator = ":"

// shortFingerprintLen is the prefix length used in reports and article ids.
const shortFingerprintLen = 8

// Fingerprint is the content-addressed identity of a source file: the
// lowercase hex SHA-256 of its workspace-relative path, a separator, and
// its raw bytes. Moving a file changes its fingerprint.
type Fingerprint string

// NewFingerprint computes the fingerprint for a file.
// The path is normalised to forward slashes so fingerprints are stable
// across platforms.
func NewFingerprint(path string, content []byte) Fingerprint {
	h := sha256.New()
	h.Write([]byte(filepath.ToSlash(path)))
	h.Write([]byte(fingerprintSeparator))
	h.Write(content)
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// String returns the hex digest.
func (f Fingerprint) String() string {
	return string(f)
}

// Short returns the first eight hex characters.
func (f Fingerprint) Short() string {
	if len(f) <= shortFingerprintLen {
		return string(f)
	}
	return string(f[:shortFingerprintLen])
}

// IsValid reports whether f looks like a SHA-256 hex digest.
func (f Fingerprint) IsValid() bool {
	if len(f) != sha256.Size*2 {
		return false
	}
	for _, c := range f {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
