package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/illarion/securelock/internal/config"
	"github.com/illarion/securelock/internal/core"
	"github.com/illarion/securelock/internal/crypto"
	"github.com/illarion/securelock/internal/git"
	"github.com/illarion/securelock/internal/keyring"
	"github.com/illarion/securelock/internal/security"
	"github.com/illarion/securelock/internal/storage"
	"github.com/illarion/securelock/textlock"
	"go.uber.org/zap"
)

// Env carries the settings shared by every command
type Env struct {
	Config *config.Config
	Logger *zap.Logger
}

// PasswordSource tells where a password came from
type PasswordSource int

const (
	SourceEnv PasswordSource = iota
	SourceKeyring
	SourcePrompt
)

// OpenBox opens the configured lockbox in the current directory or exits
func (e *Env) OpenBox() *core.Box {
	box, err := core.New(".",
		core.WithStorePath(e.Config.Store),
		core.WithIterations(e.Config.Iterations),
		core.WithLogger(e.Logger),
	)
	if err != nil {
		HandleError(err)
	}
	return box
}

// Engine returns a textlock engine using the configured iterations or exits
func (e *Env) Engine() *textlock.Engine {
	engine, err := textlock.New(textlock.WithIterations(e.Config.Iterations))
	if err != nil {
		HandleError(err)
	}
	return engine
}

// GetPassword retrieves password from environment or prompts user
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(prompt string) ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// GetPasswordOrExit is like GetPassword but exits on error
func GetPasswordOrExit(prompt string) []byte {
	password, err := GetPassword(prompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return password
}

// GetPasswordWithRetry resolves the lockbox password from the environment,
// then the keyring, then a prompt. A stale keyring entry is reported and
// skipped.
func GetPasswordWithRetry(env *Env, prompt, storeID string, verify func([]byte) error) ([]byte, PasswordSource, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		if err := verify(password); err != nil {
			crypto.ClearBytes(password)
			return nil, SourceEnv, err
		}
		return password, SourceEnv, nil
	}

	if env.Config.Keyring && storeID != "" {
		stored, err := keyring.GetPassword(storeID)
		switch {
		case err == nil:
			password := []byte(stored)
			if verr := verify(password); verr == nil {
				env.Logger.Debug("password taken from keyring")
				return password, SourceKeyring, nil
			}
			crypto.ClearBytes(password)
			fmt.Fprintln(os.Stderr, "warning: password in keyring is outdated")
		case !keyring.IsNotFound(err):
			env.Logger.Debug("keyring unavailable", zap.Error(err))
		}
	}

	password, err := core.ReadPassword(prompt)
	if err != nil {
		return nil, SourcePrompt, err
	}
	if err := verify(password); err != nil {
		crypto.ClearBytes(password)
		return nil, SourcePrompt, err
	}
	return password, SourcePrompt, nil
}

// BoxPassword resolves and verifies the password of an open lockbox or exits.
// A password typed at the prompt is offered for saving to the keyring.
func BoxPassword(env *Env, box *core.Box, prompt string) []byte {
	storeID, _ := box.GetStoreID()

	password, source, err := GetPasswordWithRetry(env, prompt, storeID, box.VerifyPassword)
	if err != nil {
		HandleError(err)
	}

	if source == SourcePrompt && env.Config.Keyring && storeID != "" && !keyring.HasPassword(storeID) {
		OfferToSavePassword(storeID, password)
	}
	return password
}

// OfferToSavePassword asks whether to store the password in the keyring
func OfferToSavePassword(storeID string, password []byte) {
	if !core.StdinIsTerminal() {
		return
	}

	fmt.Fprint(os.Stderr, "Save password to keyring? [y/N]: ")
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "y" && response != "yes" {
		return
	}

	if err := keyring.SavePassword(storeID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save to keyring: %s\n", err)
		return
	}
	fmt.Fprintln(os.Stderr, "Password saved to keyring")
}

// GetPasswordForInit retrieves password for init command
// Checks environment variable first, then prompts with confirmation
func GetPasswordForInit() ([]byte, error) {
	if password := core.GetPasswordFromEnv(); password != nil {
		return password, nil
	}

	return core.ReadPasswordConfirm()
}

// ReadText returns the text given by a file, by arguments, or on stdin,
// in that order of preference
func ReadText(args []string, file string, stdin io.Reader) (string, error) {
	if file != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("give either a file or text arguments, not both")
		}
		validator, err := security.New(".")
		if err != nil {
			return "", err
		}
		defer validator.Close()

		data, err := validator.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(io.LimitReader(stdin, security.MaxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) > security.MaxInputSize {
		return "", security.ErrTooLarge
	}
	return string(data), nil
}

// TrimLocked removes the whitespace a locked value picks up in shells and files
func TrimLocked(s string) string {
	return strings.TrimSpace(s)
}

// WriteOutput prints data to w, or writes it to a file inside the current
// directory. Plaintext is written byte for byte; a locked value gets a
// trailing newline on w. Plaintext files that git could pick up get a warning.
func WriteOutput(w io.Writer, out, data string, plaintext bool) error {
	if out == "" {
		if !plaintext {
			data += "\n"
		}
		_, err := io.WriteString(w, data)
		return err
	}

	validator, err := security.New(".")
	if err != nil {
		return err
	}
	defer validator.Close()

	if err := validator.WriteFile(out, []byte(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	if plaintext {
		if warning := git.PlaintextWarning(".", out); warning != "" {
			fmt.Fprintln(os.Stderr, warning)
		}
	}
	return nil
}

// HandleError prints an error with a hint and exits
func HandleError(err error) {
	var encErr *textlock.EncodingError
	switch {
	case errors.Is(err, core.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: lockbox not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'securelock init' first\n")
	case errors.Is(err, core.ErrAlreadyExists):
		fmt.Fprintf(os.Stderr, "Error: lockbox already exists\n")
		fmt.Fprintf(os.Stderr, "Use 'securelock status' to see current state\n")
	case errors.Is(err, core.ErrWrongPassword):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
	case errors.Is(err, storage.ErrEntryNotFound):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Use 'securelock ls' to list entries\n")
	case errors.As(err, &encErr):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Only ASCII text can be locked\n")
	case errors.Is(err, textlock.ErrWrongPasswordOrCorruptData):
		fmt.Fprintf(os.Stderr, "Error: wrong password or corrupted locked value\n")
	case errors.Is(err, textlock.ErrMalformedLockedValue):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "The input is not a value produced by 'securelock lock'\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}
