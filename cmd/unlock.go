package cmd

import (
	"context"
	"os"

	"github.com/illarion/securelock/internal/crypto"
	"github.com/illarion/securelock/textlock"
	"go.uber.org/zap"
)

// Unlock recovers the text of a locked value
func Unlock(ctx context.Context, env *Env, args []string, file, out string) {
	input, err := ReadText(args, file, os.Stdin)
	if err != nil {
		HandleError(err)
	}
	locked := TrimLocked(input)

	password := GetPasswordOrExit("Enter password: ")
	defer crypto.ClearBytes(password)

	if err := ctx.Err(); err != nil {
		HandleError(err)
	}

	// The iteration count travels in the locked value
	text, err := textlock.Unlock(locked, string(password))
	if err != nil {
		HandleError(err)
	}
	env.Logger.Debug("value unlocked", zap.Int("length", len(text)))

	if err := WriteOutput(os.Stdout, out, text, true); err != nil {
		HandleError(err)
	}
}
