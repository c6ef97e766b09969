package config

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadReadsNumberedPlayerEntries(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PLAYER_API_1", "Alpha|https://a.io/{id}")
	t.Setenv("PLAYER_API_2", "Beta|https://b.io/{id}|https://b.io/tv/{id}")
	// PLAYER_API_3 unset: PLAYER_API_4 must not be picked up.
	t.Setenv("PLAYER_API_4", "Ghost|https://ghost.io/{id}")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := []string{
		"Alpha|https://a.io/{id}",
		"Beta|https://b.io/{id}|https://b.io/tv/{id}",
	}
	if !reflect.DeepEqual(cfg.PlayerEntries, want) {
		t.Errorf("PlayerEntries = %v, want %v", cfg.PlayerEntries, want)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATA_DIR", t.TempDir())
	if _, err := Load(); err == nil {
		t.Error("Load succeeded without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATA_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.DBPath != filepath.Join(dir, "streamo.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.JWTExpiry.Minutes() != 15 {
		t.Errorf("JWTExpiry = %v, want 15m", cfg.JWTExpiry)
	}
	if len(cfg.PlayerEntries) != 0 {
		t.Errorf("PlayerEntries = %v, want empty", cfg.PlayerEntries)
	}
}

func TestLoadJWTExpiryOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("JWT_EXPIRY", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTExpiry.Hours() != 1 {
		t.Errorf("JWTExpiry = %v, want 1h", cfg.JWTExpiry)
	}

	t.Setenv("JWT_EXPIRY", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Error("Load accepted malformed JWT_EXPIRY")
	}
}
