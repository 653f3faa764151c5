// Package security provides the keyed digest used for session cookies,
// password peppering and time-boxed security codes.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrEmptyKey = errors.New("hash key is empty")

// Hasher computes a keyed one-way digest. It is safe for concurrent use.
type Hasher struct {
	key []byte
}

func NewHasher(key []byte) (*Hasher, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Hasher{key: k}, nil
}

// NewHasherFromHex builds a Hasher from a hex-encoded key, the form
// SECRET_KEY is configured in.
func NewHasherFromHex(hexKey string) (*Hasher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode hash key: %w", err)
	}
	return NewHasher(key)
}

// Hash returns the lowercase hex HMAC-SHA256 of s.
func (h *Hasher) Hash(s string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(s))
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
