package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns random token material with an optional prefix. Entity
// identities inside the content document use uuids instead; this is for
// jti values and refresh tokens.
func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}
