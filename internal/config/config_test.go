package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if len(cfg.WebSocket.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.WebSocket.AllowedOrigins)
	}
	if cfg.Connections.MaxPerIP != 3 {
		t.Errorf("expected max 3 connections per IP, got %d", cfg.Connections.MaxPerIP)
	}
	if cfg.Respawn.IntervalSeconds != 30 {
		t.Errorf("expected 30s respawn interval, got %d", cfg.Respawn.IntervalSeconds)
	}
	if cfg.Database.Dialect != "sqlite" {
		t.Errorf("expected sqlite dialect by default, got %q", cfg.Database.Dialect)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/server.yaml")

	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "server.yaml")

	content := `
websocket:
  allowed_origins:
    - "https://example.com"
  max_message_size: 8192
respawn:
  interval_seconds: 10
  max_per_tick: 4
auth:
  token_secret: supersecret
  token_ttl_minutes: 60
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.WebSocket.AllowedOrigins) != 1 || cfg.WebSocket.AllowedOrigins[0] != "https://example.com" {
		t.Errorf("unexpected allowed origins: %v", cfg.WebSocket.AllowedOrigins)
	}
	if cfg.Respawn.IntervalSeconds != 10 {
		t.Errorf("expected respawn interval 10, got %d", cfg.Respawn.IntervalSeconds)
	}
	if cfg.Respawn.MaxPerTick != 4 {
		t.Errorf("expected max per tick 4, got %d", cfg.Respawn.MaxPerTick)
	}
	if cfg.Auth.TokenSecret != "supersecret" {
		t.Errorf("unexpected token secret %q", cfg.Auth.TokenSecret)
	}
	if cfg.Auth.TokenTTLMinutes != 60 {
		t.Errorf("expected token ttl 60, got %d", cfg.Auth.TokenTTLMinutes)
	}

	// Sections absent from the file keep their defaults
	if cfg.Connections.MaxPerIP != 3 {
		t.Errorf("expected default max per IP, got %d", cfg.Connections.MaxPerIP)
	}
}

func TestIsOriginAllowed_SameOrigin(t *testing.T) {
	cfg := WebSocketConfig{AllowedOrigins: []string{}}

	if !cfg.IsOriginAllowed("http://localhost:8080", "localhost:8080") {
		t.Error("expected same-origin request to be allowed")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:8080") {
		t.Error("expected cross-origin request to be rejected")
	}
	// No Origin header means a non-browser client
	if !cfg.IsOriginAllowed("", "localhost:8080") {
		t.Error("expected empty origin to be allowed")
	}
}

func TestIsOriginAllowed_ExplicitList(t *testing.T) {
	cfg := WebSocketConfig{AllowedOrigins: []string{"https://game.example.com"}}

	if !cfg.IsOriginAllowed("https://game.example.com", "server:8080") {
		t.Error("expected listed origin to be allowed")
	}
	if cfg.IsOriginAllowed("https://other.example.com", "server:8080") {
		t.Error("expected unlisted origin to be rejected")
	}
}

func TestIsOriginAllowed_Wildcard(t *testing.T) {
	cfg := WebSocketConfig{AllowedOrigins: []string{"*"}}

	if !cfg.IsOriginAllowed("https://anywhere.com", "server:8080") {
		t.Error("expected wildcard to allow any origin")
	}
}
