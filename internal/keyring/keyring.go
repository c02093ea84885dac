// Package keyring caches lockbox passwords in the OS keyring.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "securelock"

// ErrNotFound is returned when no password is stored for a lockbox
var ErrNotFound = keyring.ErrNotFound

// SavePassword stores a password in the OS keyring
func SavePassword(storeID string, password string) error {
	return keyring.Set(serviceName, storeID, password)
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(storeID string) (string, error) {
	return keyring.Get(serviceName, storeID)
}

// DeletePassword removes a password from the OS keyring
func DeletePassword(storeID string) error {
	return keyring.Delete(serviceName, storeID)
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(storeID string) bool {
	_, err := keyring.Get(serviceName, storeID)
	return err == nil
}

// IsNotFound reports whether err means no password is stored
func IsNotFound(err error) bool {
	return errors.Is(err, keyring.ErrNotFound)
}
