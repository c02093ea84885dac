package security

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func newValidator(t *testing.T) (*PathValidator, string) {
	t.Helper()
	tmpDir := t.TempDir()
	validator, err := New(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}
	t.Cleanup(func() { validator.Close() })
	return validator, validator.rootPath
}

func TestPathValidator_Normalize(t *testing.T) {
	validator, root := newValidator(t)

	tests := []struct {
		name    string
		input   string
		want    string
		errType error
	}{
		{"simple file", "secret.txt", "secret.txt", nil},
		{"file in subdirectory", "subdir/secret.txt", filepath.Join("subdir", "secret.txt"), nil},
		{"hidden file", ".env", ".env", nil},
		{"dot slash", "./secret.txt", "secret.txt", nil},
		{"redundant slashes", "a//b///c.txt", filepath.Join("a", "b", "c.txt"), nil},
		{"absolute inside", filepath.Join(root, "in.txt"), "in.txt", nil},

		{"parent directory", "../secret.txt", "", ErrPathEscapes},
		{"nested parent", "a/../../secret.txt", "", ErrPathEscapes},
		{"absolute outside", "/etc/passwd", "", ErrAbsolutePath},
		{"absolute sibling", root + "-other/x.txt", "", ErrAbsolutePath},
		{"empty path", "", "", ErrEmptyPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runtime.GOOS == "windows" && strings.HasPrefix(tt.input, "/") {
				t.Skip("unix absolute path")
			}

			got, err := validator.Normalize(tt.input)
			if tt.errType != nil {
				if !errors.Is(err, tt.errType) {
					t.Errorf("Expected %v for %q, got %v", tt.errType, tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPathValidator_WriteAndRead(t *testing.T) {
	validator, root := newValidator(t)

	if err := validator.WriteFile("out/nested/locked.txt", []byte("locked-value")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(root, "out", "nested", "locked.txt"))
	if err != nil {
		t.Fatalf("File not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != FilePermSecure {
		t.Errorf("Expected mode %o, got %o", FilePermSecure, info.Mode().Perm())
	}

	data, err := validator.ReadFile("out/nested/locked.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "locked-value" {
		t.Errorf("Got %q", data)
	}
}

func TestPathValidator_ReadFileRejects(t *testing.T) {
	validator, root := newValidator(t)

	if err := os.Mkdir(filepath.Join(root, "dir"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	if _, err := validator.ReadFile("dir"); !errors.Is(err, ErrNotRegular) {
		t.Errorf("Expected ErrNotRegular for directory, got %v", err)
	}

	if _, err := validator.ReadFile("missing.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}

	if _, err := validator.ReadFile("../outside.txt"); !errors.Is(err, ErrPathEscapes) {
		t.Errorf("Expected ErrPathEscapes, got %v", err)
	}
}

// Test that os.Root actually prevents escaping
func TestPathValidator_ActualEscapePrevention(t *testing.T) {
	validator, root := newValidator(t)

	targetFile := filepath.Join(filepath.Dir(root), "should_not_be_written.txt")
	defer os.Remove(targetFile)

	if err := validator.WriteFile("../should_not_be_written.txt", []byte("pwned")); err == nil {
		t.Error("Expected error when trying to write outside root, got none")
	}
	if _, statErr := os.Stat(targetFile); statErr == nil {
		t.Error("File was created outside the root")
	}

	if runtime.GOOS == "windows" {
		return
	}

	// A symlink pointing out of the root must not be followed
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret"), []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}
	if _, err := validator.ReadFile("link/secret"); err == nil {
		t.Error("Expected error reading through symlink escaping the root")
	}
}
