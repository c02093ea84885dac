package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/securelock/internal/crypto"
)

// Diff shows differences between a stored entry and a local file
func Diff(ctx context.Context, env *Env, name, localPath string) {
	box := env.OpenBox()
	defer box.Close()

	password := BoxPassword(env, box, "Enter password: ")
	defer crypto.ClearBytes(password)

	diff, err := box.Diff(ctx, name, localPath, password)
	if err != nil {
		HandleError(err)
	}

	if diff == "" {
		fmt.Printf("%s: no changes\n", name)
		return
	}
	fmt.Print(diff)
}
