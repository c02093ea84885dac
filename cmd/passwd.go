package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/securelock/internal/core"
	"github.com/illarion/securelock/internal/crypto"
	"github.com/illarion/securelock/internal/keyring"
)

// Passwd re-locks every entry under a new password
func Passwd(ctx context.Context, env *Env) {
	box := env.OpenBox()
	defer box.Close()

	storeID, _ := box.GetStoreID()

	current, source, err := GetPasswordWithRetry(env, "Enter current password: ", storeID, box.VerifyPassword)
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(current)

	if source == SourceEnv {
		fmt.Fprintln(os.Stderr, "Current password taken from the environment")
	}

	fmt.Fprintln(os.Stderr, "Enter new password")
	newPassword, err := core.ReadPasswordConfirm()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(newPassword)

	if len(newPassword) == 0 {
		fmt.Fprintln(os.Stderr, "Error: password must not be empty")
		os.Exit(1)
	}

	if err := box.ChangePassword(ctx, current, newPassword); err != nil {
		HandleError(err)
	}
	fmt.Println("Password changed")

	if storeID == "" || !keyring.HasPassword(storeID) {
		return
	}
	if err := keyring.SavePassword(storeID, string(newPassword)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to update keyring: %s\n", err)
		return
	}
	fmt.Println("Keyring updated")
}
