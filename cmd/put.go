package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/securelock/internal/crypto"
)

// Put locks text into the lockbox under a name
func Put(ctx context.Context, env *Env, name string, args []string, file string) {
	text, err := ReadText(args, file, os.Stdin)
	if err != nil {
		HandleError(err)
	}

	box := env.OpenBox()
	defer box.Close()

	password := BoxPassword(env, box, "Enter password: ")
	defer crypto.ClearBytes(password)

	changed, err := box.Put(ctx, name, text, password)
	if err != nil {
		HandleError(err)
	}

	if !changed {
		fmt.Printf("%s unchanged\n", name)
		return
	}
	fmt.Printf("Stored %s (%d bytes)\n", name, len(text))
}
