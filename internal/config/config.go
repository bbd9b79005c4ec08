// Package config loads the world server configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the world server.
type Config struct {
	GameServer GameServer     `yaml:"game_server"`
	WSGateway  WSGateway      `yaml:"ws_gateway"`
	Database   DatabaseConfig `yaml:"database"`

	// DataDir overrides the embedded gameplay tables (skills, mobs,
	// spawns, obstacles) when set.
	DataDir string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`
}

// GameServer holds the TCP listener configuration.
type GameServer struct {
	BindAddress string `yaml:"bind_address"`

	// TransportKey is the static Blowfish key wrapping each session's XOR
	// key in the Init packet. Must be 8-56 bytes; clients ship the same key.
	TransportKey string `yaml:"transport_key"`

	SendQueueSize int      `yaml:"send_queue_size"`
	WriteTimeout  Duration `yaml:"write_timeout"`
	ReadTimeout   Duration `yaml:"read_timeout"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// WSGateway holds the WebSocket listener configuration.
type WSGateway struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
	Path        string `yaml:"path"`
}

// DatabaseConfig holds PostgreSQL connection parameters. An empty Host
// disables persistence; characters then live only for the session.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether persistence is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns a config with sensible defaults for local development.
func Default() Config {
	return Config{
		GameServer: GameServer{
			BindAddress:   "0.0.0.0:7777",
			TransportKey:  "riftd-dev-transport-key",
			SendQueueSize: 256,
			WriteTimeout:  Duration(5 * time.Second),
			ReadTimeout:   Duration(120 * time.Second),
		},
		WSGateway: WSGateway{
			Enabled:     true,
			BindAddress: "0.0.0.0:7778",
			Path:        "/ws",
		},
		Database: DatabaseConfig{
			Port:    5432,
			User:    "riftd",
			DBName:  "riftd",
			SSLMode: "disable",
		},
		LogLevel: "info",
	}
}

// Load reads config from a YAML file. A missing file returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
