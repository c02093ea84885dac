package core

import (
	"path/filepath"
	"testing"

	"github.com/illarion/securelock/internal/storage"
)

func openStorage(t *testing.T, dir string) *storage.Storage {
	t.Helper()
	db, err := storage.Open(filepath.Join(dir, StoreFile))
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	return db
}

func storageEntry(name string) storage.Entry {
	return storage.Entry{Name: name}
}
