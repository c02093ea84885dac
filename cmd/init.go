package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/securelock/internal/crypto"
	"github.com/illarion/securelock/internal/git"
)

// Init creates a new lockbox in the current directory
func Init(env *Env) {
	box := env.OpenBox()
	defer box.Close()

	password, err := GetPasswordForInit()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer crypto.ClearBytes(password)

	if len(password) == 0 {
		fmt.Fprintln(os.Stderr, "Error: password must not be empty")
		os.Exit(1)
	}

	if err := box.Init(password); err != nil {
		HandleError(err)
	}

	fmt.Printf("Initialized lockbox at %s\n", box.Path())

	if env.Config.Keyring {
		if storeID, err := box.GetStoreID(); err == nil {
			OfferToSavePassword(storeID, password)
		}
	}

	if warning := git.FormatStoreStatus(env.Config.Store, git.CheckStore(".", env.Config.Store)); warning != "" {
		fmt.Println(warning)
	}
}
