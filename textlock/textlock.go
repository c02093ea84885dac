package textlock

import (
	"github.com/illarion/securelock/internal/crypto"
)

// Engine locks and unlocks text. The zero value is not usable; use New.
type Engine struct {
	iterations int
}

// Option configures an Engine
type Option func(*Engine)

// WithIterations sets the PBKDF2 iteration count used by Lock.
// Unlock always uses the count recorded in the locked value.
func WithIterations(n int) Option {
	return func(e *Engine) {
		e.iterations = n
	}
}

// New creates an Engine
func New(opts ...Option) (*Engine, error) {
	e := &Engine{iterations: crypto.DefaultIterations}
	for _, opt := range opts {
		opt(e)
	}
	if err := checkIterations(int64(e.iterations)); err != nil {
		return nil, err
	}
	return e, nil
}

// Iterations returns the PBKDF2 iteration count used by Lock
func (e *Engine) Iterations() int {
	return e.iterations
}

var defaultEngine = &Engine{iterations: crypto.DefaultIterations}

// Lock locks text with password using the default engine
func Lock(text, password string) (string, error) {
	return defaultEngine.Lock(text, password)
}

// Unlock unlocks a value produced by Lock
func Unlock(locked, password string) (string, error) {
	return defaultEngine.Unlock(locked, password)
}

// Lock validates text and returns its locked form.
// Text containing anything outside ASCII fails with an *EncodingError.
func (e *Engine) Lock(text, password string) (string, error) {
	plain, err := validateASCII("lock", text)
	if err != nil {
		return "", err
	}
	defer crypto.ClearBytes(plain)

	keys := deriveKeys(password, e.iterations)
	defer keys.Destroy()

	hdr := header{version: formatVersion, iterations: uint32(e.iterations)}.bytes()
	tag := keys.Tag(hdr, plain)

	cipher := make([]byte, len(plain))
	crypto.XORKeystream(cipher, plain, keys.Stream)

	return encode(hdr, tag, cipher), nil
}

// Unlock returns the text inside locked.
// A value that does not decode fails with ErrMalformedLockedValue; a wrong
// password or any tampering fails with ErrWrongPasswordOrCorruptData.
func (e *Engine) Unlock(locked, password string) (string, error) {
	s, err := decode(locked)
	if err != nil {
		return "", err
	}

	keys := deriveKeys(password, int(s.header.iterations))
	defer keys.Destroy()

	plain := make([]byte, len(s.cipher))
	defer crypto.ClearBytes(plain)
	crypto.XORKeystream(plain, s.cipher, keys.Stream)

	expected := keys.Tag(s.raw, plain)
	if !crypto.ConstantTimeCompare(expected, s.tag) {
		return "", ErrWrongPasswordOrCorruptData
	}

	return string(plain), nil
}

func deriveKeys(password string, iterations int) *crypto.Keys {
	pw := []byte(password)
	defer crypto.ClearBytes(pw)
	return crypto.NewKeys(pw, iterations)
}
