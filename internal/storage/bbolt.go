package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket = []byte("config") // Version, timestamps, KDF iterations, check value - unencrypted
	IndexBucket  = []byte("index")  // Public entry list for ls/status - unencrypted
	BlobsBucket  = []byte("blobs")  // Locked values
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigIters    = []byte("iterations")
	ConfigCheck    = []byte("check")
	ConfigStoreID  = []byte("store_id")
)

var ErrEntryNotFound = errors.New("entry not found")

// Storage provides BBolt-based storage for a lockbox
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a lockbox database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// initialize creates the bucket structure for a new lockbox
func initialize(tx *bolt.Tx) error {
	for _, bucket := range [][]byte{ConfigBucket, IndexBucket, BlobsBucket} {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	config := tx.Bucket(ConfigBucket)
	if err := config.Put(ConfigVersion, []byte("1")); err != nil {
		return err
	}

	created, _ := time.Now().MarshalBinary()
	if err := config.Put(ConfigCreated, created); err != nil {
		return err
	}
	return config.Put(ConfigModified, created)
}

// Create initializes a new lockbox with its iterations, password check value
// and a fresh store ID in one transaction, so a failed create leaves no
// partially initialized lockbox behind. Returns the store ID.
func (s *Storage) Create(iterations uint32, check string) (string, error) {
	storeID := uuid.NewString()
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := initialize(tx); err != nil {
			return err
		}

		config := tx.Bucket(ConfigBucket)
		iters := make([]byte, 4)
		binary.BigEndian.PutUint32(iters, iterations)
		if err := config.Put(ConfigIters, iters); err != nil {
			return err
		}
		if err := config.Put(ConfigCheck, []byte(check)); err != nil {
			return err
		}
		return config.Put(ConfigStoreID, []byte(storeID))
	})
	if err != nil {
		return "", err
	}
	return storeID, nil
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetIterations retrieves the KDF iterations
func (s *Storage) GetIterations() (uint32, error) {
	var iterations uint32
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		iters := config.Get(ConfigIters)
		if len(iters) != 4 {
			return fmt.Errorf("iterations not found")
		}
		iterations = binary.BigEndian.Uint32(iters)
		return nil
	})
	return iterations, err
}

// GetCheck retrieves the locked password check value
func (s *Storage) GetCheck() (string, error) {
	var check string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigCheck)
		if data == nil {
			return fmt.Errorf("password check not found")
		}
		check = string(data)
		return nil
	})
	return check, err
}

// touch updates the modified timestamp inside an open transaction
func touch(tx *bolt.Tx, now time.Time) error {
	modified, _ := now.MarshalBinary()
	return tx.Bucket(ConfigBucket).Put(ConfigModified, modified)
}

func (s *Storage) getTime(key []byte) (time.Time, error) {
	var t time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(key)
		if data == nil {
			return fmt.Errorf("%s time not found", key)
		}
		return t.UnmarshalBinary(data)
	})
	return t, err
}

// GetCreated retrieves the creation timestamp
func (s *Storage) GetCreated() (time.Time, error) {
	return s.getTime(ConfigCreated)
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	return s.getTime(ConfigModified)
}

// GetStoreID retrieves the store ID from config bucket
func (s *Storage) GetStoreID() (string, error) {
	var storeID string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigStoreID)
		if data == nil {
			return fmt.Errorf("store_id not found")
		}
		storeID = string(data)
		return nil
	})
	return storeID, err
}

// GetOrCreateStoreID retrieves the existing store ID or generates a new one
func (s *Storage) GetOrCreateStoreID() (string, error) {
	storeID, err := s.GetStoreID()
	if err == nil {
		return storeID, nil
	}

	storeID = uuid.NewString()
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ConfigBucket).Put(ConfigStoreID, []byte(storeID))
	})
	if err != nil {
		return "", err
	}

	return storeID, nil
}

// PutEntry stores an entry and its locked value in one transaction.
// An existing entry keeps its creation time.
func (s *Storage) PutEntry(entry Entry, locked string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		now := time.Now()

		if prev := index.Get([]byte(entry.Name)); prev != nil {
			var old Entry
			if err := json.Unmarshal(prev, &old); err == nil {
				entry.Created = old.Created
			}
		}
		if entry.Created.IsZero() {
			entry.Created = now
		}
		entry.Modified = now

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := index.Put([]byte(entry.Name), data); err != nil {
			return err
		}
		if err := tx.Bucket(BlobsBucket).Put([]byte(entry.Name), []byte(locked)); err != nil {
			return err
		}
		return touch(tx, now)
	})
}

// GetEntry returns a single index entry, or nil if the name is unknown
func (s *Storage) GetEntry(name string) (*Entry, error) {
	var entry *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return fmt.Errorf("index bucket not found")
		}
		data := index.Get([]byte(name))
		if data == nil {
			return nil
		}
		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	return entry, err
}

// GetLocked retrieves the locked value stored under name
func (s *Storage) GetLocked(name string) (string, error) {
	var locked string
	err := s.db.View(func(tx *bolt.Tx) error {
		blobs := tx.Bucket(BlobsBucket)
		if blobs == nil {
			return fmt.Errorf("blobs bucket not found")
		}
		data := blobs.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
		}
		// string() copies; the slice is only valid during the transaction
		locked = string(data)
		return nil
	})
	return locked, err
}

// DeleteEntries removes several entries in one transaction. If any name is
// missing nothing is removed.
func (s *Storage) DeleteEntries(names []string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		blobs := tx.Bucket(BlobsBucket)
		for _, name := range names {
			if index.Get([]byte(name)) == nil {
				return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
			}
			if err := index.Delete([]byte(name)); err != nil {
				return err
			}
			if err := blobs.Delete([]byte(name)); err != nil {
				return err
			}
		}
		return touch(tx, time.Now())
	})
}

// ListEntries returns all index entries in name order
func (s *Storage) ListEntries() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		if index == nil {
			return fmt.Errorf("index bucket not found")
		}
		return index.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("corrupt index entry %q: %w", k, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// ReplaceAll rewrites every given record and the check value atomically.
// Used when the password changes; entry timestamps are preserved.
func (s *Storage) ReplaceAll(records []Record, check string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		index := tx.Bucket(IndexBucket)
		blobs := tx.Bucket(BlobsBucket)
		for _, r := range records {
			data, err := json.Marshal(r.Entry)
			if err != nil {
				return err
			}
			if err := index.Put([]byte(r.Entry.Name), data); err != nil {
				return err
			}
			if err := blobs.Put([]byte(r.Entry.Name), []byte(r.Locked)); err != nil {
				return err
			}
		}
		if err := tx.Bucket(ConfigBucket).Put(ConfigCheck, []byte(check)); err != nil {
			return err
		}
		return touch(tx, time.Now())
	})
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting entries to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	if err := bolt.Compact(dst, s.db, 0); err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	s.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
