package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Battle holds all configuration for a battle run.
type Battle struct {
	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "text" or "json"

	// Simulation
	Seed              uint64  `yaml:"seed"` // 0 picks a random seed at startup
	MaxTurns          int     `yaml:"max_turns"`
	MarkedDamageBonus float64 `yaml:"marked_damage_bonus"`

	// CatalogPath points to a YAML skill/hero/monster catalog.
	// Empty uses the embedded default catalog.
	CatalogPath string `yaml:"catalog_path"`

	Party   []RosterEntry `yaml:"party"`
	Enemies []RosterEntry `yaml:"enemies"`

	// Result persistence
	Persist  bool           `yaml:"persist"`
	Database DatabaseConfig `yaml:"database"`
}

// RosterEntry places one catalog template on the field.
type RosterEntry struct {
	Template string `yaml:"template"`
	Location string `yaml:"location"` // "Front", "Back" or empty
	Level    int32  `yaml:"level"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultBattle returns Battle config with a small demo roster.
func DefaultBattle() Battle {
	return Battle{
		LogLevel:          "info",
		LogFormat:         "text",
		MaxTurns:          200,
		MarkedDamageBonus: 0.15,
		Party: []RosterEntry{
			{Template: "knight", Location: "Front", Level: 1},
			{Template: "cleric", Location: "Back", Level: 1},
			{Template: "archer", Location: "Back", Level: 1},
		},
		Enemies: []RosterEntry{
			{Template: "orc", Location: "Front", Level: 1},
			{Template: "goblin", Location: "Front", Level: 1},
			{Template: "shaman", Location: "Back", Level: 1},
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "partybattle",
			Password: "partybattle",
			DBName:   "partybattle",
			SSLMode:  "disable",
		},
	}
}

// Validate checks values that would make a battle impossible to run.
func (b Battle) Validate() error {
	if b.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", b.MaxTurns)
	}
	if b.MarkedDamageBonus < 0 {
		return fmt.Errorf("marked_damage_bonus must be >= 0, got %v", b.MarkedDamageBonus)
	}
	if len(b.Party) == 0 || len(b.Enemies) == 0 {
		return fmt.Errorf("both party and enemies need at least one entry")
	}
	switch b.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", b.LogFormat)
	}
	return nil
}

// LoadBattle loads battle config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadBattle(path string) (Battle, error) {
	cfg := DefaultBattle()

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

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
