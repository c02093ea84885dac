package storage

import "time"

// Entry describes a named locked value in the index
type Entry struct {
	Name     string    `json:"name"`
	Length   int       `json:"length"` // Plaintext length in bytes
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Hash     string    `json:"hash"` // Keyed content hash for change detection
}

// Record is an entry together with its locked value
type Record struct {
	Entry  Entry
	Locked string
}
