package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/securelock/internal/crypto"
)

// Rm removes entries matching names or glob patterns
func Rm(ctx context.Context, env *Env, patterns []string) {
	box := env.OpenBox()
	defer box.Close()

	password := BoxPassword(env, box, "Enter password: ")
	defer crypto.ClearBytes(password)

	removed, err := box.Remove(ctx, patterns, password)
	for _, name := range removed {
		fmt.Printf("removed: %s\n", name)
	}
	if err != nil {
		HandleError(err)
	}

	if len(removed) > 0 {
		fmt.Println("Run 'securelock compact' to reclaim space")
	}
}
