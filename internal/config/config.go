package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the feeding log.
type Config struct {
	Host       string
	Port       int
	DBPath     string
	DefaultPet string
	LogLevel   slog.Level

	// PublicURL is the base URL MCP clients use to reach the server. Empty
	// means http://Host:Port.
	PublicURL string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Host:       "0.0.0.0",
		Port:       8011,
		DBPath:     "/data/feeding-log.db",
		DefaultPet: "default",
		LogLevel:   slog.LevelInfo,
	}
}

// Load reads envFile into the process environment when it exists, then
// builds a Config from FEEDING_* variables. Variables already set in the
// environment win over the file. An empty envFile skips the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from FEEDING_* variables, falling back to
// defaults for any unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("FEEDING_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("FEEDING_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return Config{}, fmt.Errorf("invalid FEEDING_PORT %q", v)
		}
		cfg.Port = n
	}
	if v := strings.TrimSpace(os.Getenv("FEEDING_PUBLIC_URL")); v != "" {
		cfg.PublicURL = v
	}
	if v := os.Getenv("FEEDING_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("FEEDING_DEFAULT_PET")); v != "" {
		cfg.DefaultPet = v
	}
	if v := os.Getenv("FEEDING_LOG_LEVEL"); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// ParseLevel accepts debug, info, warn and error, in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Addr is the listen address for the tool server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
