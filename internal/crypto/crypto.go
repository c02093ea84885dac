package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	KeySize           = 32      // Key material and subkey size
	TagSize           = 32      // HMAC-SHA256 tag size
	DefaultIterations = 4096    // Default PBKDF2 iterations
	MinIterations     = 1       // Lowest iteration count accepted from a header
	MaxIterations     = 1 << 24 // Highest iteration count accepted from a header
)

var (
	kdfSalt   = []byte("securelock/v1")
	streamTag = []byte("securelock stream key")
	tagTag    = []byte("securelock tag key")
)

// DeriveKey derives key material from a password
func DeriveKey(password []byte, iterations int) []byte {
	return pbkdf2.Key(password, kdfSalt, iterations, KeySize, sha256.New)
}

// Keys holds the subkeys split from one key material
type Keys struct {
	Stream []byte
	TagKey []byte
}

// SplitKey expands key material into independent stream and tag keys.
// A failure of the HKDF reader is not recoverable and panics.
func SplitKey(material []byte) *Keys {
	return &Keys{
		Stream: expand(material, streamTag),
		TagKey: expand(material, tagTag),
	}
}

func expand(secret, info []byte) []byte {
	r := hkdf.New(sha256.New, secret, nil, info)
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		panic(fmt.Sprintf("crypto: hkdf expansion failed: %v", err))
	}
	return key
}

// NewKeys derives and splits keys for a password in one step
func NewKeys(password []byte, iterations int) *Keys {
	material := DeriveKey(password, iterations)
	defer ClearBytes(material)
	return SplitKey(material)
}

// Tag computes the integrity tag over the given parts
func (k *Keys) Tag(parts ...[]byte) []byte {
	mac := hmac.New(sha256.New, k.TagKey)
	for _, p := range parts {
		mac.Write(p)
	}
	return mac.Sum(nil)
}

// Destroy clears both subkeys from memory
func (k *Keys) Destroy() {
	ClearBytes(k.Stream)
	ClearBytes(k.TagKey)
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
