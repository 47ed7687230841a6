package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	defaultSecretService = "paycycle"
	defaultSecretUser    = "db_key"
)

var (
	keyringGet    = keyring.Get
	keyringSet    = keyring.Set
	keyringDelete = keyring.Delete
)

// ErrDBKeyNotFound is returned when no database key has been stored yet.
var ErrDBKeyNotFound = errors.New("database key not found")

// LoadDBKey loads the key used to open the encrypted database.
//
// Order of precedence:
// 1) PAYCYCLE_DB_KEY environment variable.
// 2) System credential store item referenced by service/account.
func LoadDBKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv("PAYCYCLE_DB_KEY")); key != "" {
		return key, nil
	}

	key, err := loadFromKeyring()
	if err != nil {
		return "", err
	}

	if key == "" {
		return "", errors.New("database key is empty")
	}

	return key, nil
}

// SaveDBKey stores the database key in the system credential store.
func SaveDBKey(key string) error {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return errors.New("database key cannot be empty")
	}

	service, account := keyringItem()
	if err := keyringSet(service, account, trimmed); err != nil {
		return fmt.Errorf(
			"failed to store keyring item service=%q account=%q: %w",
			service,
			account,
			err,
		)
	}

	return nil
}

// DeleteDBKey removes the stored key. A missing item is not an error.
func DeleteDBKey() error {
	service, account := keyringItem()
	if err := keyringDelete(service, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf(
			"failed to delete keyring item service=%q account=%q: %w",
			service,
			account,
			err,
		)
	}
	return nil
}

func loadFromKeyring() (string, error) {
	service, account := keyringItem()

	secret, err := keyringGet(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrDBKeyNotFound
		}
		return "", fmt.Errorf(
			"failed to read keyring item service=%q account=%q: %w",
			service,
			account,
			err,
		)
	}

	return strings.TrimSpace(secret), nil
}

func keyringItem() (string, string) {
	return envOrDefault("PAYCYCLE_KEYCHAIN_SERVICE", defaultSecretService),
		envOrDefault("PAYCYCLE_KEYCHAIN_ACCOUNT", defaultSecretUser)
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
