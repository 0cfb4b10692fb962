package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestGetConfigDir validates config directory access
func TestGetConfigDir(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	configDir := GetConfigDir()
	if configDir == "" {
		t.Fatal("Config directory should not be empty")
	}

	if _, err := os.Stat(configDir); err != nil {
		t.Errorf("Config directory should exist: %v", err)
	}
}

// TestGetSessionPath validates the session file location
func TestGetSessionPath(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	path := GetSessionPath()
	if path != filepath.Join(tempDir, "session.json") {
		t.Errorf("Unexpected session path %s", path)
	}
}

// TestInitWithCustomPath validates custom config path
func TestInitWithCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	customConfigPath := filepath.Join(tempDir, "custom", "path", "config.toml")

	if err := Init(customConfigPath); err != nil {
		t.Fatalf("Failed to initialize with custom path: %v", err)
	}

	expectedDir := filepath.Join(tempDir, "custom", "path")
	if GetConfigDir() != expectedDir {
		t.Errorf("Expected config dir %s, got %s", expectedDir, GetConfigDir())
	}
}

func TestDefaults(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if GetString("api.base_url") == "" {
		t.Error("api.base_url should have a default")
	}
	if GetInt("api.timeout") != 30 {
		t.Errorf("Expected default timeout 30, got %d", GetInt("api.timeout"))
	}
	if GetDuration("poll.messages_interval") != 3*time.Second {
		t.Errorf("Unexpected messages poll interval %v", GetDuration("poll.messages_interval"))
	}
	if !GetBool("social.reconcile_counts") {
		t.Error("Count reconciliation should default to on")
	}
}

func TestUserConfigOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.toml")
	content := "[api]\nbase_url = \"https://api.example.com\"\ntimeout = 5\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if err := Init(path); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}

	if got := GetString("api.base_url"); got != "https://api.example.com" {
		t.Errorf("Expected overridden base url, got %s", got)
	}
	if got := GetInt("api.timeout"); got != 5 {
		t.Errorf("Expected overridden timeout, got %d", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/logs/x.log"); got != filepath.Join(home, "logs", "x.log") {
		t.Errorf("expandPath did not expand tilde: %s", got)
	}
	if got := expandPath("/var/log/x.log"); got != "/var/log/x.log" {
		t.Errorf("expandPath changed an absolute path: %s", got)
	}
}
