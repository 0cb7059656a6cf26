package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AuthServer holds all configuration for the authentication server.
type AuthServer struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)

	// Lockout — spec.md §9's proof-failure disconnect policy: after
	// LoginTryBeforeBan consecutive proof failures from one source IP, new
	// connections from that IP are refused for LoginBlockAfterBan seconds.
	LoginTryBeforeBan  int `yaml:"login_try_before_ban"`
	LoginBlockAfterBan int `yaml:"login_block_after_ban"` // seconds

	// IdleTimeoutSeconds bounds how long a connection may sit in
	// AwaitChallenge/AwaitProof without sending a complete packet.
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds"`

	// RealmReloadIntervalSeconds is loaded from the config file but not read
	// by the realm catalog, which reloads on the fixed
	// constants.RealmReloadIntervalSeconds period (30s, jittered ±10%).
	RealmReloadIntervalSeconds int `yaml:"realm_reload_interval_seconds"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	// Connection pool parameters (optional, defaults from pgxpool apply if not set)
	MaxConns          int32  `yaml:"max_conns"`           // default: max(4, NumCPU)
	MinConns          int32  `yaml:"min_conns"`           // default: 0
	MaxConnLifetime   string `yaml:"max_conn_lifetime"`   // duration, e.g. "1h"
	MaxConnIdleTime   string `yaml:"max_conn_idle_time"`  // duration, e.g. "30m"
	HealthCheckPeriod string `yaml:"health_check_period"` // duration, e.g. "1m"
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	base := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)

	var params []string
	if d.MaxConns > 0 {
		params = append(params, fmt.Sprintf("pool_max_conns=%d", d.MaxConns))
	}
	if d.MinConns > 0 {
		params = append(params, fmt.Sprintf("pool_min_conns=%d", d.MinConns))
	}
	if d.MaxConnLifetime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_lifetime=%s", d.MaxConnLifetime))
	}
	if d.MaxConnIdleTime != "" {
		params = append(params, fmt.Sprintf("pool_max_conn_idle_time=%s", d.MaxConnIdleTime))
	}
	if d.HealthCheckPeriod != "" {
		params = append(params, fmt.Sprintf("pool_health_check_period=%s", d.HealthCheckPeriod))
	}

	if len(params) > 0 {
		return base + "&" + strings.Join(params, "&")
	}
	return base
}

// Default returns an AuthServer config with sensible defaults.
func Default() AuthServer {
	return AuthServer{
		BindAddress:                "0.0.0.0",
		Port:                       3724,
		LogLevel:                   "info",
		LoginTryBeforeBan:          5,
		LoginBlockAfterBan:         900,
		IdleTimeoutSeconds:         30,
		RealmReloadIntervalSeconds: 30,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "authserver",
			Password: "authserver",
			DBName:   "authserver",
			SSLMode:  "disable",
		},
	}
}

// Load loads the authentication server config from a YAML file. If the file
// doesn't exist, returns defaults.
func Load(path string) (AuthServer, error) {
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
