package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"
	"unicode"

	"github.com/illarion/securelock/internal/crypto"
	"github.com/illarion/securelock/internal/git"
	"github.com/illarion/securelock/internal/security"
	"github.com/illarion/securelock/internal/storage"
	"github.com/illarion/securelock/textlock"
	"go.uber.org/zap"
)

const (
	StoreFile           = ".securelock"
	MaxNameLength       = 255
	passwordCheckString = "securelock-password-check"
)

var (
	ErrNotInitialized = errors.New("lockbox not initialized")
	ErrAlreadyExists  = errors.New("lockbox already exists")
	ErrWrongPassword  = errors.New("wrong password")
	ErrEntryNotFound  = storage.ErrEntryNotFound
	ErrInvalidName    = errors.New("invalid entry name")
)

// Box manages a lockbox of named locked values
type Box struct {
	dir        string
	path       string
	iterations int
	validator  *security.PathValidator
	logger     *zap.Logger
}

// Option configures a Box
type Option func(*Box)

// WithStorePath sets the lockbox file; relative paths are resolved against
// the box directory
func WithStorePath(p string) Option {
	return func(b *Box) {
		if p == "" {
			return
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(b.dir, p)
		}
		b.path = p
	}
}

// WithIterations sets the PBKDF2 iterations recorded by Init
func WithIterations(n int) Option {
	return func(b *Box) {
		b.iterations = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Box) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Box rooted at dir
func New(dir string, opts ...Option) (*Box, error) {
	validator, err := security.New(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path validator: %w", err)
	}

	b := &Box{
		dir:        dir,
		path:       filepath.Join(dir, StoreFile),
		iterations: crypto.DefaultIterations,
		validator:  validator,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close releases resources held by the Box
func (b *Box) Close() error {
	if b.validator != nil {
		return b.validator.Close()
	}
	return nil
}

// Path returns the lockbox file path
func (b *Box) Path() string {
	return b.path
}

// open opens an existing, initialized lockbox
func (b *Box) open() (*storage.Storage, error) {
	if _, err := os.Stat(b.path); err != nil {
		return nil, ErrNotInitialized
	}

	db, err := storage.Open(b.path)
	if err != nil {
		return nil, err
	}

	initialized, err := db.IsInitialized()
	if err != nil || !initialized {
		db.Close()
		return nil, ErrNotInitialized
	}
	return db, nil
}

// engineFor returns an engine using the lockbox's recorded iterations
func engineFor(db *storage.Storage) (*textlock.Engine, error) {
	iterations, err := db.GetIterations()
	if err != nil {
		return nil, fmt.Errorf("failed to get iterations: %w", err)
	}
	return textlock.New(textlock.WithIterations(int(iterations)))
}

// verify checks password against the stored check value
func verify(db *storage.Storage, password []byte) error {
	check, err := db.GetCheck()
	if err != nil {
		return fmt.Errorf("failed to read password check: %w", err)
	}

	text, err := textlock.Unlock(check, string(password))
	if errors.Is(err, textlock.ErrWrongPasswordOrCorruptData) {
		return ErrWrongPassword
	}
	if err != nil {
		return fmt.Errorf("corrupt password check: %w", err)
	}
	if text != passwordCheckString {
		return ErrWrongPassword
	}
	return nil
}

// fingerprint identifies a locked value without revealing its text.
// Locking is deterministic, so equal fingerprints mean equal text.
func fingerprint(locked string) string {
	sum := sha256.Sum256([]byte(locked))
	return hex.EncodeToString(sum[:8])
}

// ValidateName checks that name can be used as an entry name
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return fmt.Errorf("%w: %q contains control or invalid characters", ErrInvalidName, name)
		}
	}
	return nil
}

// Init initializes a new lockbox
func (b *Box) Init(password []byte) error {
	if _, err := os.Stat(b.path); err == nil {
		return ErrAlreadyExists
	}

	engine, err := textlock.New(textlock.WithIterations(b.iterations))
	if err != nil {
		return err
	}

	check, err := engine.Lock(passwordCheckString, string(password))
	if err != nil {
		return fmt.Errorf("failed to create password check: %w", err)
	}

	db, err := storage.Open(b.path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if _, err := db.Create(uint32(b.iterations), check); err != nil {
		db.Close()
		os.Remove(b.path)
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	b.logger.Debug("lockbox initialized", zap.String("path", b.path), zap.Int("iterations", b.iterations))
	return nil
}

// VerifyPassword checks if the password is correct for this lockbox
func (b *Box) VerifyPassword(password []byte) error {
	db, err := b.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return verify(db, password)
}

// Put locks text and stores it under name, replacing any existing entry.
// Reports whether the stored value changed.
func (b *Box) Put(ctx context.Context, name, text string, password []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := ValidateName(name); err != nil {
		return false, err
	}

	db, err := b.open()
	if err != nil {
		return false, err
	}
	defer db.Close()

	if err := verify(db, password); err != nil {
		return false, err
	}

	engine, err := engineFor(db)
	if err != nil {
		return false, err
	}

	locked, err := engine.Lock(text, string(password))
	if err != nil {
		return false, err
	}

	hash := fingerprint(locked)
	if prev, err := db.GetEntry(name); err == nil && prev != nil && prev.Hash == hash {
		b.logger.Debug("entry unchanged", zap.String("entry", name))
		return false, nil
	}

	if err := db.PutEntry(storage.Entry{Name: name, Length: len(text), Hash: hash}, locked); err != nil {
		return false, fmt.Errorf("failed to store %s: %w", name, err)
	}

	b.logger.Debug("entry stored", zap.String("entry", name), zap.Int("length", len(text)))
	return true, nil
}

// Get unlocks the entry stored under name
func (b *Box) Get(ctx context.Context, name string, password []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	db, err := b.open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	locked, err := db.GetLocked(name)
	if err != nil {
		return "", err
	}

	text, err := textlock.Unlock(locked, string(password))
	if errors.Is(err, textlock.ErrWrongPasswordOrCorruptData) {
		// Tell a wrong password apart from a damaged entry
		if verr := verify(db, password); verr != nil {
			return "", verr
		}
		return "", fmt.Errorf("entry %s: %w", name, err)
	}
	if err != nil {
		return "", fmt.Errorf("entry %s: %w", name, err)
	}

	b.logger.Debug("entry unlocked", zap.String("entry", name))
	return text, nil
}

// matchEntries returns entry names matching any of the glob patterns
func matchEntries(entries []storage.Entry, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, e := range entries {
			if seen[e.Name] {
				continue
			}
			if ok, _ := path.Match(pattern, e.Name); ok || pattern == e.Name {
				seen[e.Name] = true
				names = append(names, e.Name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the entries matching the given names or glob patterns
func (b *Box) Remove(ctx context.Context, patterns []string, password []byte) ([]string, error) {
	db, err := b.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := verify(db, password); err != nil {
		return nil, err
	}

	entries, err := db.ListEntries()
	if err != nil {
		return nil, err
	}
	names, err := matchEntries(entries, patterns)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no entry matches %v", ErrEntryNotFound, patterns)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := db.DeleteEntries(names); err != nil {
		return nil, fmt.Errorf("failed to remove entries: %w", err)
	}

	b.logger.Debug("entries removed", zap.Int("count", len(names)))
	return names, nil
}

// List returns all entries without requiring a password
func (b *Box) List(ctx context.Context) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := b.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.ListEntries()
}

// StatusInfo describes a lockbox
type StatusInfo struct {
	Path       string
	Size       int64
	Created    time.Time
	Modified   time.Time
	Iterations int
	StoreID    string
	Entries    []storage.Entry
	TotalBytes int
	Git        *git.StoreStatus
}

// Status reports the lockbox state without requiring a password
func (b *Box) Status(ctx context.Context) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := b.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	status := &StatusInfo{Path: b.path}

	if info, err := os.Stat(b.path); err == nil {
		status.Size = info.Size()
	}
	if status.Created, err = db.GetCreated(); err != nil {
		return nil, err
	}
	if status.Modified, err = db.GetModified(); err != nil {
		return nil, err
	}
	iterations, err := db.GetIterations()
	if err != nil {
		return nil, err
	}
	status.Iterations = int(iterations)
	status.StoreID, _ = db.GetStoreID()

	if status.Entries, err = db.ListEntries(); err != nil {
		return nil, err
	}
	for _, e := range status.Entries {
		status.TotalBytes += e.Length
	}

	if rel, err := filepath.Rel(b.dir, b.path); err == nil {
		status.Git = git.CheckStore(b.dir, rel)
	}

	return status, nil
}

// ChangePassword re-locks every entry with a new password in one transaction
func (b *Box) ChangePassword(ctx context.Context, currentPassword, newPassword []byte) error {
	db, err := b.open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := verify(db, currentPassword); err != nil {
		return err
	}

	engine, err := engineFor(db)
	if err != nil {
		return err
	}

	entries, err := db.ListEntries()
	if err != nil {
		return err
	}

	records := make([]storage.Record, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		locked, err := db.GetLocked(e.Name)
		if err != nil {
			return err
		}
		text, err := textlock.Unlock(locked, string(currentPassword))
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.Name, err)
		}
		relocked, err := engine.Lock(text, string(newPassword))
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.Name, err)
		}

		e.Hash = fingerprint(relocked)
		records = append(records, storage.Record{Entry: e, Locked: relocked})
	}

	check, err := engine.Lock(passwordCheckString, string(newPassword))
	if err != nil {
		return fmt.Errorf("failed to create password check: %w", err)
	}

	if err := db.ReplaceAll(records, check); err != nil {
		return fmt.Errorf("failed to rewrite lockbox: %w", err)
	}

	b.logger.Debug("password changed", zap.Int("count", len(records)))
	return nil
}

// Diff compares the entry stored under name with a local file and returns a
// unified diff, or an empty string when they are identical
func (b *Box) Diff(ctx context.Context, name, localPath string, password []byte) (string, error) {
	text, err := b.Get(ctx, name, password)
	if err != nil {
		return "", err
	}

	local, err := b.validator.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	defer crypto.ClearBytes(local)

	return GenerateUnifiedDiff(name, localPath, []byte(text), local)
}

// Compact compacts the database to reclaim unused space.
// This is useful after removing entries.
func (b *Box) Compact() error {
	db, err := b.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Compact()
}

// GetStoreID retrieves the store ID used as the keyring account
func (b *Box) GetStoreID() (string, error) {
	db, err := b.open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	return db.GetStoreID()
}

// GetOrCreateStoreID retrieves the existing store ID or generates a new one
func (b *Box) GetOrCreateStoreID() (string, error) {
	db, err := b.open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	return db.GetOrCreateStoreID()
}
