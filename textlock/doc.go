// Package textlock locks ASCII text with a password.
//
// Lock turns a text and a password into a printable locked value; Unlock
// reverses it with the same password and fails loudly with any other
// password or with a tampered value:
//
//	locked, err := textlock.Lock("hello", "password")
//	text, err := textlock.Unlock(locked, "password")
//
// A locked value is base64url (no padding) of
//
//	version (1) || iterations (4, big endian) || tag (32) || ciphertext (n)
//
// where the ciphertext is the text XORed with a counter-mode keystream and
// the tag is HMAC-SHA256 over the header and the text. Both keys come from
// the password through PBKDF2 and HKDF, see internal/crypto.
//
// Locking is deterministic: the same text, password and iteration count
// always give the same locked value. Engines hold no mutable state and are
// safe for concurrent use.
package textlock
