// Package storage provides the BBolt database behind a securelock lockbox.
//
// Database structure uses three buckets:
//   - config: format version, timestamps, KDF iterations, store ID and the
//     locked password check value (unencrypted)
//   - index: entry names, lengths, timestamps and keyed hashes (unencrypted,
//     for ls/status)
//   - blobs: locked values, one per entry name
//
// The unencrypted index bucket lets ls and status work without a password.
// Each blob is self-contained and unlocks with the password alone.
//
// BBolt provides ACID transactions, file locking, and corruption detection.
package storage
