//go:build !sqlcipher
// +build !sqlcipher

package storage

import (
	"database/sql"
	"errors"
)

var errSecureUnsupported = errors.New(
	"secure mode requires a sqlcipher-enabled build; rebuild with '-tags sqlcipher'",
)

func openSecureSQLite(path string, key string) (*sql.DB, error) {
	return nil, errSecureUnsupported
}

func secureSQLiteSupported() bool {
	return false
}
