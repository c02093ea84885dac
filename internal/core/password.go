package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/securelock/internal/config"
	"github.com/illarion/securelock/internal/crypto"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when a password is needed but nothing can prompt for it
var ErrNoTerminal = errors.New("no terminal to read password from; set " + config.EnvPassword)

// ReadPassword reads a password from the terminal without echoing.
// When stdin carries piped input the controlling terminal is used instead.
func ReadPassword(prompt string) ([]byte, error) {
	tty := os.Stdin
	if !term.IsTerminal(int(tty.Fd())) {
		f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return nil, ErrNoTerminal
		}
		defer f.Close()
		tty = f
	}

	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(tty.Fd()))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// ReadPasswordConfirm reads a password twice and ensures they match
func ReadPasswordConfirm() ([]byte, error) {
	password1, err := ReadPassword("Enter password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password1)

	password2, err := ReadPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	defer crypto.ClearBytes(password2)

	if !crypto.ConstantTimeCompare(password1, password2) {
		return nil, fmt.Errorf("passwords do not match")
	}

	// Return a copy of the password
	result := make([]byte, len(password1))
	copy(result, password1)
	return result, nil
}

// GetPasswordFromEnv reads the password from SECURELOCK_PASSWORD
func GetPasswordFromEnv() []byte {
	password, ok := os.LookupEnv(config.EnvPassword)
	if !ok {
		return nil
	}
	return []byte(password)
}

// StdinIsTerminal reports whether stdin is an interactive terminal
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
