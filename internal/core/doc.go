// Package core provides the securelock lockbox operations.
//
// A lockbox is a single file of named locked values sharing one password.
// Core operations include:
//   - Init: Create a new lockbox and its password check value
//   - Put/Get: Lock text under a name and unlock it again
//   - Remove: Delete entries by name or glob pattern
//   - List/Status: Inspect the lockbox without a password
//   - ChangePassword: Re-lock every entry with a new password
//   - Diff: Compare an entry with a local file
//
// Every entry is a self-contained textlock value, so it can also be
// unlocked on its own with the lockbox password.
package core
