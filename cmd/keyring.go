package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/securelock/internal/crypto"
	"github.com/illarion/securelock/internal/keyring"
)

// KeyringSave stores the lockbox password in the OS keyring
func KeyringSave(env *Env) {
	box := env.OpenBox()
	defer box.Close()

	storeID, err := box.GetOrCreateStoreID()
	if err != nil {
		HandleError(err)
	}

	password := GetPasswordOrExit("Enter password: ")
	defer crypto.ClearBytes(password)

	if err := box.VerifyPassword(password); err != nil {
		HandleError(err)
	}

	if err := keyring.SavePassword(storeID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}
	fmt.Println("Password saved to keyring")
}

// KeyringDelete removes the lockbox password from the OS keyring
func KeyringDelete(env *Env) {
	box := env.OpenBox()
	defer box.Close()

	storeID, err := box.GetStoreID()
	if err != nil {
		HandleError(err)
	}
	if storeID == "" {
		fmt.Println("No password in keyring")
		return
	}

	if err := keyring.DeletePassword(storeID); err != nil {
		if keyring.IsNotFound(err) {
			fmt.Println("No password in keyring")
			return
		}
		fmt.Fprintf(os.Stderr, "Error: failed to delete from keyring: %s\n", err)
		os.Exit(1)
	}
	fmt.Println("Password removed from keyring")
}

// KeyringStatus reports whether a password is saved for this lockbox
func KeyringStatus(env *Env) {
	box := env.OpenBox()
	defer box.Close()

	storeID, err := box.GetStoreID()
	if err != nil {
		HandleError(err)
	}

	if storeID != "" && keyring.HasPassword(storeID) {
		fmt.Println("Password saved in keyring")
	} else {
		fmt.Println("No password in keyring")
	}
	if !env.Config.Keyring {
		fmt.Println("Keyring lookups are disabled in config")
	}
}
