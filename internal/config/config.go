package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/lachiem1/paycycle/internal/storage"
)

const envPrefix = "PAYCYCLE"

// Config holds all paycycle configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
}

// StorageConfig selects the database mode and file.
type StorageConfig struct {
	Mode string `toml:"mode"`
	Path string `toml:"path,omitempty"`
}

// DisplayConfig controls how amounts are printed.
type DisplayConfig struct {
	Locale   string `toml:"locale"`
	Currency string `toml:"currency"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// env is applied on top of the file. Empty values leave the file's value alone.
type env struct {
	StorageMode string `envconfig:"STORAGE_MODE"`
	DBPath      string `envconfig:"DB_PATH"`
	Locale      string `envconfig:"LOCALE"`
	Currency    string `envconfig:"CURRENCY"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	LogFormat   string `envconfig:"LOG_FORMAT"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Mode: string(storage.ModePlain)},
		Display: DisplayConfig{Locale: "pt-BR", Currency: "BRL"},
		Log:     LogConfig{Level: "warn", Format: "text"},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "paycycle")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "paycycle")
}

// Path returns the full path to the default config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (the default path when empty), then
// applies .env and PAYCYCLE_* environment overrides. A missing file yields
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	var overrides env
	if err := envconfig.Process(envPrefix, &overrides); err != nil {
		return cfg, fmt.Errorf("process env config: %w", err)
	}
	overrides.apply(&cfg)

	return cfg, cfg.validate()
}

func (e env) apply(cfg *Config) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&cfg.Storage.Mode, e.StorageMode)
	set(&cfg.Storage.Path, e.DBPath)
	set(&cfg.Display.Locale, e.Locale)
	set(&cfg.Display.Currency, e.Currency)
	set(&cfg.Log.Level, e.LogLevel)
	set(&cfg.Log.Format, e.LogFormat)
}

func (c Config) validate() error {
	if _, err := storage.ParseMode(c.Storage.Mode); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.Log.Format)
	}
	return nil
}

// StorageConfig resolves the storage settings, filling in the default
// database path.
func (c Config) StorageConfig() (storage.Config, error) {
	mode, err := storage.ParseMode(c.Storage.Mode)
	if err != nil {
		return storage.Config{}, err
	}
	path := strings.TrimSpace(c.Storage.Path)
	if path == "" {
		path, err = storage.DefaultPath()
		if err != nil {
			return storage.Config{}, err
		}
	}
	return storage.Config{Mode: mode, Path: path}, nil
}

// Save writes the config to path (the default path when empty).
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists reports whether a config file exists at path (the default path when
// empty).
func Exists(path string) bool {
	if path == "" {
		path = Path()
	}
	_, err := os.Stat(path)
	return err == nil
}
