package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr      string
	DataDir       string
	DBPath        string
	TMDBAPIKey    string
	JWTSecret     string
	JWTExpiry     time.Duration
	PlayerEntries []string
}

func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      envOrDefault("HTTP_ADDR", ":8080"),
		DataDir:       envOrDefault("DATA_DIR", "/app/data"),
		TMDBAPIKey:    os.Getenv("TMDB_API_KEY"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiry:     15 * time.Minute,
		PlayerEntries: numberedEntries("PLAYER_API"),
	}

	cfg.DBPath = envOrDefault("DB_PATH", filepath.Join(cfg.DataDir, "streamo.db"))

	if raw := strings.TrimSpace(os.Getenv("JWT_EXPIRY")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse JWT_EXPIRY: %w", err)
		}
		cfg.JWTExpiry = d
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	// TMDB_API_KEY may be empty for bootstrap; catalog endpoints fail until set.

	if err := ensureDirs(cfg.DataDir); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// numberedEntries reads prefix_1, prefix_2, ... until the first missing key
// and returns the values in order. Blank values are kept here; the player
// parser decides what counts as a usable entry.
func numberedEntries(prefix string) []string {
	var entries []string
	for index := 1; ; index++ {
		value, ok := os.LookupEnv(fmt.Sprintf("%s_%d", prefix, index))
		if !ok {
			break
		}
		entries = append(entries, value)
	}
	return entries
}

func ensureDirs(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			return errors.New("directory path is empty")
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
