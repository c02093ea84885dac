package cmd

import (
	"context"
	"os"

	"github.com/illarion/securelock/internal/crypto"
	"go.uber.org/zap"
)

// Lock turns text into a locked value
func Lock(ctx context.Context, env *Env, args []string, file, out string) {
	text, err := ReadText(args, file, os.Stdin)
	if err != nil {
		HandleError(err)
	}

	engine := env.Engine()

	password := GetPasswordOrExit("Enter password: ")
	defer crypto.ClearBytes(password)

	if err := ctx.Err(); err != nil {
		HandleError(err)
	}

	locked, err := engine.Lock(text, string(password))
	if err != nil {
		HandleError(err)
	}
	env.Logger.Debug("text locked", zap.Int("length", len(text)), zap.Int("iterations", engine.Iterations()))

	if err := WriteOutput(os.Stdout, out, locked, false); err != nil {
		HandleError(err)
	}
}
