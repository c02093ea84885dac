// Package git reports how securelock files relate to a git repository.
//
// Checks performed:
//   - Whether the lockbox file is tracked by git (fine to commit, it holds
//     only locked values)
//   - Whether a plaintext output file is tracked or unignored (should not be)
package git
