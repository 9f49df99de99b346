package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	mrand "math/rand"
)

// alphabet is the URL-safe 64-symbol set used for generated credentials.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

const (
	// LeaderTokenLength is the symbol count of the leader shared secret.
	LeaderTokenLength = 72
	// InviteTokenLength is the symbol count of single-use invite tokens.
	InviteTokenLength = 48
)

// Generate returns a random token of the given length. It draws from
// crypto/rand and only falls back to math/rand when the system source is
// unavailable; the fallback is a reduced-security mode and the second
// return value reports whether it was used.
func Generate(length int) (string, bool) {
	if length <= 0 {
		length = LeaderTokenLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err == nil {
		out := make([]byte, length)
		for i, b := range buf {
			out[i] = alphabet[int(b)%len(alphabet)]
		}
		return string(out), false
	}

	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[mrand.Intn(len(alphabet))]
	}
	return string(out), true
}

// Hash returns the SHA-256 hex digest of the raw token. Only the digest is
// ever persisted.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// HashEqual compares a raw token against a stored digest in constant time.
func HashEqual(raw, storedHash string) bool {
	computed := Hash(raw)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
