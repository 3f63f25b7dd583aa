// Package config resolves tasktrack settings from defaults, TOML files,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults.
const (
	DefaultFile        = "tasks.json"
	DefaultLockTimeout = 5 * time.Second
	DefaultLogLevel    = "warn"

	// ProjectFile is looked up in the working directory.
	ProjectFile = ".tasktrack.toml"
	// UserFile is looked up under the user config directory.
	UserFile = "tasktrack/config.toml"
)

// Environment variables.
const (
	EnvFile     = "TASKTRACK_FILE"
	EnvFormat   = "TASKTRACK_FORMAT"
	EnvLogLevel = "TASKTRACK_LOG_LEVEL"
	EnvCache    = "TASKTRACK_CACHE"
)

var (
	validFormats   = []string{"pretty", "toon", "json"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds resolved settings. Paths are absolute after Load.
type Config struct {
	// File is the tasks file.
	File string
	// StateDir holds the lock and cache files. Empty means next to File.
	StateDir string
	// Format is pretty, toon or json. Empty means detect from the terminal.
	Format string
	// Cache enables the SQLite query cache.
	Cache bool
	// LockTimeout bounds the wait for the store lock.
	LockTimeout time.Duration
	// LogLevel is debug, info, warn or error.
	LogLevel string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		File:        DefaultFile,
		Cache:       true,
		LockTimeout: DefaultLockTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// fileConfig mirrors Config for TOML decoding; nil means not set.
type fileConfig struct {
	File        *string `toml:"file"`
	StateDir    *string `toml:"state_dir"`
	Format      *string `toml:"format"`
	Cache       *bool   `toml:"cache"`
	LockTimeout *string `toml:"lock_timeout"`
	LogLevel    *string `toml:"log_level"`
}

// Sources tells Load where to look.
type Sources struct {
	// WorkDir anchors relative paths and the project config file.
	WorkDir string
	// UserConfigDir is the user's config root (os.UserConfigDir). Empty skips
	// the user file.
	UserConfigDir string
	// Getenv reads environment variables. Nil skips the environment.
	Getenv func(string) string
}

// Overrides carries values from command-line flags. Empty fields are unset.
type Overrides struct {
	File     string
	LogLevel string
}

// Load resolves configuration in priority order:
// 1. Defaults
// 2. User config file
// 3. Project config file (overrides user config)
// 4. Environment variables
// 5. Command-line flags
func Load(src Sources, ov Overrides) (*Config, error) {
	cfg := Defaults()

	if src.UserConfigDir != "" {
		if err := mergeFileIfExists(&cfg, filepath.Join(src.UserConfigDir, UserFile)); err != nil {
			return nil, err
		}
	}

	if src.WorkDir != "" {
		if err := mergeFileIfExists(&cfg, filepath.Join(src.WorkDir, ProjectFile)); err != nil {
			return nil, err
		}
	}

	if src.Getenv != nil {
		if err := mergeEnv(&cfg, src.Getenv); err != nil {
			return nil, err
		}
	}

	if ov.File != "" {
		cfg.File = ov.File
	}
	if ov.LogLevel != "" {
		cfg.LogLevel = ov.LogLevel
	}

	if err := finalize(&cfg, src.WorkDir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeFileIfExists(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := mergeFile(cfg, path); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

// mergeFile decodes a TOML file over cfg. Unknown keys are an error.
func mergeFile(cfg *Config, path string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if fc.File != nil {
		cfg.File = *fc.File
	}
	if fc.StateDir != nil {
		cfg.StateDir = *fc.StateDir
	}
	if fc.Format != nil {
		cfg.Format = *fc.Format
	}
	if fc.Cache != nil {
		cfg.Cache = *fc.Cache
	}
	if fc.LockTimeout != nil {
		d, err := time.ParseDuration(*fc.LockTimeout)
		if err != nil {
			return fmt.Errorf("lock_timeout: %w", err)
		}
		cfg.LockTimeout = d
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	return nil
}

func mergeEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(EnvFile); v != "" {
		cfg.File = v
	}
	if v := getenv(EnvFormat); v != "" {
		cfg.Format = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv(EnvCache); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvCache, v)
		}
		cfg.Cache = b
	}
	return nil
}

// finalize normalizes and validates cfg, resolving relative paths against
// workDir.
func finalize(cfg *Config, workDir string) error {
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format != "" && !slices.Contains(validFormats, cfg.Format) {
		return fmt.Errorf("invalid format %q (valid: %s)", cfg.Format, strings.Join(validFormats, ", "))
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level %q (valid: %s)", cfg.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if cfg.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive, got %s", cfg.LockTimeout)
	}

	if strings.TrimSpace(cfg.File) == "" {
		return errors.New("tasks file path is empty")
	}
	cfg.File = resolve(workDir, expandHome(cfg.File))
	if cfg.StateDir != "" {
		cfg.StateDir = resolve(workDir, expandHome(cfg.StateDir))
	}
	return nil
}

func resolve(workDir, path string) string {
	if filepath.IsAbs(path) || workDir == "" {
		return path
	}
	return filepath.Join(workDir, path)
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

