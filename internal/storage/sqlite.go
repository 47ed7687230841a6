package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lachiem1/paycycle/internal/auth"
)

type Mode string

const (
	ModePlain  Mode = "plain"
	ModeSecure Mode = "secure"
)

const schemaVersion = 3

type Config struct {
	Mode Mode
	Path string
}

// ParseMode accepts "plain" or "secure"; blank means plain.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ModePlain):
		return ModePlain, nil
	case string(ModeSecure):
		return ModeSecure, nil
	}
	return "", fmt.Errorf("unknown storage mode %q (want plain or secure)", raw)
}

// DefaultPath is the database location used when none is configured.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(configDir, "paycycle", "paycycle.db"), nil
}

func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Mode {
	case ModeSecure:
		db, err = openSecure(cfg.Path)
	case ModePlain, "":
		db, err = openPlainSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openSecure(path string) (*sql.DB, error) {
	if !secureSQLiteSupported() {
		return nil, errors.New(
			"secure mode requires a sqlcipher-enabled build; rebuild with '-tags sqlcipher'",
		)
	}

	key, created, err := ensureDBKey()
	if err != nil {
		return nil, fmt.Errorf("ensure secure db key: %w", err)
	}
	if created {
		// Files encrypted under a previous key can never be opened again.
		exists, err := hasLocalDBFiles(path)
		if err != nil {
			return nil, fmt.Errorf("check existing db files: %w", err)
		}
		if exists {
			if err := resetLocalDBFiles(path); err != nil {
				return nil, fmt.Errorf("reset db after key creation: %w", err)
			}
		}
	}

	return openSecureSQLite(path, key)
}

// Wipe removes local database files for cfg.Path.
func Wipe(cfg Config) error {
	if err := resetLocalDBFiles(cfg.Path); err != nil {
		return fmt.Errorf("wipe local db files: %w", err)
	}
	return nil
}

// Exists reports whether any database file for cfg.Path is present.
func Exists(cfg Config) (bool, error) {
	return hasLocalDBFiles(cfg.Path)
}

func ensureDBKey() (key string, created bool, err error) {
	key, err = auth.LoadDBKey()
	if err == nil && strings.TrimSpace(key) != "" {
		return key, false, nil
	}
	if err != nil && !errors.Is(err, auth.ErrDBKeyNotFound) {
		return "", false, err
	}

	newKey, err := generateRandomKey()
	if err != nil {
		return "", false, err
	}

	if err := auth.SaveDBKey(newKey); err != nil {
		return "", false, err
	}
	return newKey, true, nil
}

func generateRandomKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(buf), nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	const bootstrapSchema = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  version INTEGER NOT NULL
);

INSERT OR IGNORE INTO schema_migrations (id, version) VALUES (1, 1);
`
	if _, err := db.ExecContext(ctx, bootstrapSchema); err != nil {
		return fmt.Errorf("run sqlite migrations: %w", err)
	}

	var currentVersion int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_migrations WHERE id = 1").Scan(&currentVersion); err != nil {
		return fmt.Errorf("read sqlite schema version: %w", err)
	}

	if currentVersion > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, schemaVersion)
	}

	if currentVersion < 2 {
		const schema = `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
		if err := applyMigration(ctx, db, 2, schema); err != nil {
			return err
		}
		currentVersion = 2
	}
	if currentVersion < 3 {
		const schema = `
CREATE TABLE IF NOT EXISTS rollover_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ran_at TEXT NOT NULL,
  cycles_closed INTEGER NOT NULL,
  forced INTEGER NOT NULL DEFAULT 0 CHECK (forced IN (0,1)),
  next_salary_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rollover_log_ran_at ON rollover_log(ran_at);
`
		if err := applyMigration(ctx, db, 3, schema); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, schema string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite migration v%d transaction: %w", version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run sqlite v%d migrations: %w", version, err)
	}
	if _, err = tx.ExecContext(ctx, "UPDATE schema_migrations SET version = ? WHERE id = 1", version); err != nil {
		return fmt.Errorf("update sqlite schema version to %d: %w", version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit sqlite v%d migrations: %w", version, err)
	}
	return nil
}

func hasLocalDBFiles(path string) (bool, error) {
	for _, p := range localDBFiles(path) {
		_, err := os.Stat(p)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}
	return false, nil
}

func resetLocalDBFiles(path string) error {
	for _, p := range localDBFiles(path) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func localDBFiles(path string) []string {
	return []string{
		path,
		path + "-wal",
		path + "-shm",
	}
}
