// Package config holds the application settings: where the ledger file and
// the relational database live, and how hard mining is.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Environment variables overriding the defaults.
const (
	EnvLedgerPath   = "FOODLEDGER_LEDGER"
	EnvDatabasePath = "FOODLEDGER_DB"
	EnvDifficulty   = "FOODLEDGER_DIFFICULTY"
)

// Config carries the application settings.
type Config struct {
	// LedgerPath is the JSON document the full ledger state is saved to.
	LedgerPath string
	// DatabasePath is the SQLite database holding custody transaction rows.
	DatabasePath string
	// Difficulty is the number of leading hex zeros required of every
	// sealed block's hash. 2 keeps mining near-instant for demo scale.
	Difficulty int
}

// Default returns the demo-scale defaults under a local data directory.
func Default() Config {
	return Config{
		LedgerPath:   filepath.Join("data", "blockchain.json"),
		DatabasePath: filepath.Join("data", "database.db"),
		Difficulty:   2,
	}
}

// FromEnv starts from Default and applies any environment overrides.
func FromEnv() (Config, error) {
	cfg := Default()
	if v := os.Getenv(EnvLedgerPath); v != "" {
		cfg.LedgerPath = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(EnvDifficulty); v != "" {
		difficulty, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s %q: %w", EnvDifficulty, v, err)
		}
		cfg.Difficulty = difficulty
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the ledger would refuse at construction.
func (c Config) Validate() error {
	if c.Difficulty < 0 {
		return fmt.Errorf("config: negative difficulty %d", c.Difficulty)
	}
	if c.LedgerPath == "" {
		return fmt.Errorf("config: empty ledger path")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("config: empty database path")
	}
	return nil
}
