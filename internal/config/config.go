// Package config loads booknotes configuration from command-line flags,
// environment variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Covers CoversConfig
	Export ExportConfig
	Query  QueryConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds local persistence configuration.
type DataConfig struct {
	BasePath string // Root directory for the database and cover cache
	Backend  string // badger, sqlite or memory
}

// CoversConfig holds cover lookup configuration.
type CoversConfig struct {
	LookupEnabled bool          // Offline mode when false: every new book gets no cover
	SearchURL     string        // Open Library search endpoint
	ImageHost     string        // Base of the derived cover image URL
	Timeout       time.Duration // Per-lookup HTTP timeout
}

// ExportConfig holds backup export configuration.
type ExportConfig struct {
	Dir string
}

// QueryConfig holds collection query configuration.
type QueryConfig struct {
	SortLocale string // BCP 47 tag used for title collation
}

// Load parses args (without the program name) and builds the configuration
// with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// It returns the arguments left after flag parsing (the subcommand and its args).
func Load(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("booknotes", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Directory for the database and cover cache (default: ~/BookNotes)")
	backend := fs.String("store", "", "Store backend: badger, sqlite or memory (default: badger)")
	lookup := fs.String("cover-lookup", "", "Look up covers online (default: true)")
	searchURL := fs.String("cover-search-url", "", "Cover search endpoint")
	imageHost := fs.String("cover-image-host", "", "Cover image host")
	timeout := fs.String("cover-timeout", "", "Cover lookup timeout (default: 30s)")
	exportDir := fs.String("export-dir", "", "Directory for exported backups (default: current directory)")
	locale := fs.String("sort-locale", "", "Locale for title sorting (default: en)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	// Missing .env is fine; godotenv never overrides variables already set.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "warn"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
			Backend:  getConfigValue(*backend, "STORE_BACKEND", "badger"),
		},
		Covers: CoversConfig{
			LookupEnabled: getBoolConfigValue(*lookup, "COVER_LOOKUP_ENABLED", true),
			SearchURL:     getConfigValue(*searchURL, "COVER_SEARCH_URL", "https://openlibrary.org/search.json"),
			ImageHost:     getConfigValue(*imageHost, "COVER_IMAGE_HOST", "https://covers.openlibrary.org"),
		},
		Export: ExportConfig{
			Dir: getConfigValue(*exportDir, "EXPORT_DIR", "."),
		},
		Query: QueryConfig{
			SortLocale: getConfigValue(*locale, "SORT_LOCALE", "en"),
		},
	}

	timeoutStr := getConfigValue(*timeout, "COVER_LOOKUP_TIMEOUT", "30s")
	d, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid cover timeout %q: %w", timeoutStr, err)
	}
	cfg.Covers.Timeout = d

	if err := cfg.expandDataPath(); err != nil {
		return nil, nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Data.Backend {
	case "badger", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid store backend: %s (must be badger, sqlite, or memory)", c.Data.Backend)
	}

	if c.Data.BasePath == "" {
		return errors.New("data path cannot be empty after expansion")
	}

	if c.Covers.Timeout <= 0 {
		return errors.New("cover timeout must be positive")
	}

	if _, err := language.Parse(c.Query.SortLocale); err != nil {
		return fmt.Errorf("invalid sort locale %q: %w", c.Query.SortLocale, err)
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	defaultPath := ""
	if c.Data.BasePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		defaultPath = filepath.Join(homeDir, "BookNotes")
	}

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(strValue); err == nil {
		return b
	}
	return strings.EqualFold(strValue, "yes")
}
