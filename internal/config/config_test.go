package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameServer.BindAddress != "0.0.0.0:7777" {
		t.Errorf("BindAddress = %q", cfg.GameServer.BindAddress)
	}
	if cfg.GameServer.TransportKey == "" {
		t.Error("default transport key empty")
	}
	if cfg.Database.Enabled() {
		t.Error("persistence enabled by default")
	}
	if !cfg.WSGateway.Enabled {
		t.Error("websocket gateway disabled by default")
	}
}

func TestLoadOverridesPartially(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldserver.yaml")
	content := `
game_server:
  bind_address: "127.0.0.1:9000"
  read_timeout: 30s
database:
  host: db.internal
  password: secret
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GameServer.BindAddress != "127.0.0.1:9000" {
		t.Errorf("BindAddress = %q", cfg.GameServer.BindAddress)
	}
	if cfg.GameServer.ReadTimeout != Duration(30*time.Second) {
		t.Errorf("ReadTimeout = %v", time.Duration(cfg.GameServer.ReadTimeout))
	}
	// Unset keys keep their defaults.
	if cfg.GameServer.SendQueueSize != 256 {
		t.Errorf("SendQueueSize = %d, want default", cfg.GameServer.SendQueueSize)
	}
	if cfg.WSGateway.Path != "/ws" {
		t.Errorf("WSGateway.Path = %q, want default", cfg.WSGateway.Path)
	}
	if !cfg.Database.Enabled() {
		t.Error("database host set but persistence disabled")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("game_server: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml accepted")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "game_server:\n  write_timeout: banana\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("unparseable duration accepted")
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "riftd", Password: "pw",
		DBName: "riftd", SSLMode: "disable",
	}
	want := "postgres://riftd:pw@localhost:5432/riftd?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
