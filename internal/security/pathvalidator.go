// Package security confines the files securelock reads and writes to the
// working directory.
package security

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	DirPermSecure  = 0700 // Directory: owner rwx only
	FilePermSecure = 0600 // File: owner rw only
	MaxInputSize   = 64 << 20
)

var (
	ErrPathEscapes  = errors.New("path escapes working directory")
	ErrAbsolutePath = errors.New("absolute path outside working directory")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrTooLarge     = errors.New("file too large")
	ErrNotRegular   = errors.New("not a regular file")
)

// PathValidator performs file operations confined to a root directory
// using the os.Root API.
type PathValidator struct {
	root     *os.Root
	rootPath string
}

// New creates a PathValidator for the directory at rootPath
func New(rootPath string) (*PathValidator, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open root: %w", err)
	}

	return &PathValidator{
		root:     root,
		rootPath: absPath,
	}, nil
}

// Close releases the root directory handle
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// Normalize turns a user-supplied path into a clean path relative to the
// root. Absolute paths are accepted when they point inside the root.
func (pv *PathValidator) Normalize(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	if filepath.IsAbs(userPath) {
		rel, err := filepath.Rel(pv.rootPath, filepath.Clean(userPath))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, userPath)
		}
		userPath = rel
	}

	// filepath.IsLocal rejects escaping paths, reserved names and the like
	cleanPath := filepath.Clean(userPath)
	if !filepath.IsLocal(cleanPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	return cleanPath, nil
}

// ReadFile reads a regular file inside the root, up to MaxInputSize bytes
func (pv *PathValidator) ReadFile(path string) ([]byte, error) {
	rel, err := pv.Normalize(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	f, err := pv.root.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, rel)
	}
	if info.Size() > MaxInputSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, rel, info.Size())
	}

	return io.ReadAll(io.LimitReader(f, MaxInputSize+1))
}

// WriteFile writes data to a file inside the root with owner-only
// permissions, creating parent directories as needed.
func (pv *PathValidator) WriteFile(path string, data []byte) error {
	rel, err := pv.Normalize(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	if err := pv.mkdirAll(filepath.Dir(rel)); err != nil {
		return err
	}

	f, err := pv.root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermSecure)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// mkdirAll creates dir and its parents inside the root
func (pv *PathValidator) mkdirAll(dir string) error {
	if dir == "." {
		return nil
	}
	if err := pv.mkdirAll(filepath.Dir(dir)); err != nil {
		return err
	}

	err := pv.root.Mkdir(dir, DirPermSecure)
	if err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
