/*
Package config
File: config.go
Description:
    Host configuration. Values come from ZENFISHER_* environment variables
    first and command-line flags override them.
*/

package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration. Addr overrides Port when set, Memory
// keeps saves in process memory only, an empty CatalogPath uses the
// built-in catalog and a zero Seed draws a fresh seed per session.
type Config struct {
	Port         int           `env:"ZENFISHER_PORT" envDefault:"8081"`
	Addr         string        `env:"ZENFISHER_ADDR"`
	DBPath       string        `env:"ZENFISHER_DB_PATH" envDefault:"zenfisher.db"`
	Memory       bool          `env:"ZENFISHER_MEMORY"`
	CatalogPath  string        `env:"ZENFISHER_CATALOG_PATH"`
	Seed         int64         `env:"ZENFISHER_SEED"`
	Tick         time.Duration `env:"ZENFISHER_TICK" envDefault:"50ms"`
	SaveInterval time.Duration `env:"ZENFISHER_SAVE_INTERVAL" envDefault:"5s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite save database path")
	fs.BoolVar(&cfg.Memory, "memory", cfg.Memory, "Keep saves in memory only")
	fs.StringVar(&cfg.CatalogPath, "catalog", cfg.CatalogPath, "Catalog YAML path (empty uses the built-in catalog)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed (0 picks a fresh seed per session)")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Simulation tick period")
	fs.DurationVar(&cfg.SaveInterval, "save-interval", cfg.SaveInterval, "Autosave period")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that would break the server loop.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" && (c.Port <= 0 || c.Port > 65535) {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive"))
	}
	if c.SaveInterval <= 0 {
		errs = append(errs, fmt.Errorf("save interval must be positive"))
	}
	if !c.Memory && c.DBPath == "" {
		errs = append(errs, fmt.Errorf("db path is required unless running in memory"))
	}
	return errors.Join(errs...)
}

// ListenAddr is the address handed to the HTTP server.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}
