// ABOUTME: Tests for config loading and saving.
// ABOUTME: Covers defaults, YAML round-trips, and remote detection.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.HasRemote() {
		t.Error("default config should not report a remote")
	}
	if cfg.Session.UserID != "" {
		t.Errorf("expected empty user id, got %q", cfg.Session.UserID)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		API: APIConfig{
			URL:    "https://example.com/api",
			Key:    "secret",
			TeamID: "team-1",
		},
		Session: SessionConfig{UserID: "u1"},
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if loaded.API.URL != cfg.API.URL || loaded.API.Key != cfg.API.Key || loaded.API.TeamID != cfg.API.TeamID {
		t.Errorf("API config did not round-trip: %+v", loaded.API)
	}
	if loaded.Session.UserID != "u1" {
		t.Errorf("session user did not round-trip: %q", loaded.Session.UserID)
	}
	if !loaded.HasRemote() {
		t.Error("expected HasRemote after saving full API config")
	}
}

func TestGetConfigPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath error: %v", err)
	}
	want := filepath.Join(dir, "feedkit", "config.yaml")
	if path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
}

func TestHasRemoteRequiresAllFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"empty", Config{}, false},
		{"url only", Config{API: APIConfig{URL: "x"}}, false},
		{"no team", Config{API: APIConfig{URL: "x", Key: "y"}}, false},
		{"complete", Config{API: APIConfig{URL: "x", Key: "y", TeamID: "z"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HasRemote(); got != tt.want {
				t.Errorf("HasRemote() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSaveFilePermissions(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{API: APIConfig{Key: "secret"}}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	path, _ := GetConfigPath()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat error: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
	}
}
