package cmd

import (
	"context"
	"os"

	"github.com/illarion/securelock/internal/crypto"
)

// Get unlocks an entry from the lockbox
func Get(ctx context.Context, env *Env, name, out string) {
	box := env.OpenBox()
	defer box.Close()

	password := BoxPassword(env, box, "Enter password: ")
	defer crypto.ClearBytes(password)

	text, err := box.Get(ctx, name, password)
	if err != nil {
		HandleError(err)
	}

	if err := WriteOutput(os.Stdout, out, text, true); err != nil {
		HandleError(err)
	}
}
