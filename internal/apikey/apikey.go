// Package apikey generates and validates the fixed-format shared secrets
// accepted by the token issuer.
//
// A key is 32 lowercase hex characters: 8 of millisecond-timestamp, 16 of
// randomness, and 8 of checksum over the first 24. The checksum lets
// operators spot mangled keys (truncated copy/paste) before they ever reach
// the service; it carries no cryptographic weight.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Length is the total key length in hex characters.
const Length = 32

const (
	timestampLen = 8
	randomLen    = 16
	checksumLen  = 8
)

// Generate returns a new key in the fixed format.
func Generate() (string, error) {
	ms := time.Now().UnixMilli()
	ts := fmt.Sprintf("%016x", ms)
	ts = ts[len(ts)-timestampLen:]

	b := make([]byte, randomLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	base := ts + hex.EncodeToString(b)
	return base + checksum(base), nil
}

// Valid reports whether key has the expected length, is lowercase hex, and
// carries a matching checksum.
func Valid(key string) bool {
	if len(key) != Length {
		return false
	}
	if strings.ToLower(key) != key {
		return false
	}
	if _, err := hex.DecodeString(key); err != nil {
		return false
	}
	base := key[:timestampLen+randomLen]
	return checksum(base) == key[timestampLen+randomLen:]
}

// checksum computes an 8-hex-char digest of s using the 32-bit shift-add
// hash the administrative key generator has always used. Keys are ASCII, so
// iterating bytes matches iterating code points.
func checksum(s string) string {
	var h int32
	for i := 0; i < len(s); i++ {
		h = (h << 5) - h + int32(s[i])
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return fmt.Sprintf("%08x", v)
}
