package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/illarion/securelock/internal/git"
	"github.com/illarion/securelock/internal/keyring"
)

// Status shows the lockbox state without requiring a password
func Status(ctx context.Context, env *Env) {
	box := env.OpenBox()
	defer box.Close()

	status, err := box.Status(ctx)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Lockbox: %s\n", status.Path)
	fmt.Printf("   Size: %s\n", formatSize(status.Size))
	fmt.Printf("   Created: %s\n", status.Created.Format("2006-01-02 15:04:05"))
	fmt.Printf("   Modified: %s\n", status.Modified.Format("2006-01-02 15:04:05"))
	fmt.Printf("   Iterations: %d\n", status.Iterations)
	fmt.Printf("   Entries: %d (%s of text)\n", len(status.Entries), formatSize(int64(status.TotalBytes)))

	if status.StoreID != "" {
		state := "no password saved"
		if keyring.HasPassword(status.StoreID) {
			state = "password saved"
		}
		if !env.Config.Keyring {
			state += ", disabled in config"
		}
		fmt.Printf("   Keyring: %s\n", state)
	}

	if status.Git != nil {
		fmt.Print(git.FormatStoreStatus(filepath.Base(status.Path), status.Git))
	}
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
