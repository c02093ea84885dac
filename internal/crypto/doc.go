// Package crypto provides the key and keystream primitives behind securelock.
//
// Key derivation uses PBKDF2-HMAC-SHA256 with:
//   - a fixed domain-separation salt, so the same password always yields the
//     same 32-byte key material
//   - an iteration count chosen by the caller and recorded next to the data
//
// The key material is split with HKDF-SHA256 into two independent subkeys:
//   - a stream key, expanded in counter mode into the keystream
//   - a tag key, used for the HMAC-SHA256 integrity tag
//
// Memory safety:
//   - Use ClearBytes() to zero sensitive data after use
//   - Call Keys.Destroy() when done with a derived key set
package crypto
