// Package config loads SpectralDNA settings from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gemlab/spectraldna/pkg/logger"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "spectraldna.toml"

// Database selects the registry backend.
type Database struct {
	Driver string `toml:"driver"` // sqlite or postgres
	Path   string `toml:"path"`   // sqlite file
	DSN    string `toml:"dsn"`    // postgres connection string
}

// Fingerprint fixes the hashing contract. Changing any of these values
// changes every fingerprint.
type Fingerprint struct {
	MineralClass string `toml:"mineral_class"`
	Rounding     string `toml:"rounding"`
	Algorithm    string `toml:"algorithm"`
}

// Attestation enables signed registrations when KeyFile is set.
type Attestation struct {
	KeyFile   string `toml:"key_file"`
	Recipient string `toml:"recipient"`
}

// Server contains HTTP API settings.
type Server struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Logging contains log output settings.
type Logging struct {
	Level string `toml:"level"`
}

type Config struct {
	Database    Database    `toml:"database"`
	Fingerprint Fingerprint `toml:"fingerprint"`
	Attestation Attestation `toml:"attestation"`
	Server      Server      `toml:"server"`
	Logging     Logging     `toml:"logging"`
}

func Default() Config {
	return Config{
		Database: Database{
			Driver: "sqlite",
			Path:   "spectraldna.sqlite3",
		},
		Fingerprint: Fingerprint{
			MineralClass: fingerprint.DefaultMineralClass,
			Rounding:     string(fingerprint.DefaultRounding),
			Algorithm:    string(fingerprint.DefaultAlgorithm),
		},
		Server: Server{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads path (or DefaultConfigFile when path is empty), applies
// environment overrides and validates the result. A missing file is not an
// error; the boolean reports whether one was read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	exists := false
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		exists = true
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, false, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return nil, false, fmt.Errorf("config file %s does not exist", path)
		}
	default:
		return nil, false, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, exists, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SPECTRAL_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("SPECTRAL_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SPECTRAL_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SPECTRAL_MINERAL_CLASS"); v != "" {
		c.Fingerprint.MineralClass = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) normalize() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}

	rule, err := fingerprint.ParseRoundingRule(c.Fingerprint.Rounding)
	if err != nil {
		return fmt.Errorf("fingerprint.rounding: %w", err)
	}
	c.Fingerprint.Rounding = string(rule)

	alg, err := fingerprint.ParseHashAlgorithm(c.Fingerprint.Algorithm)
	if err != nil {
		return fmt.Errorf("fingerprint.algorithm: %w", err)
	}
	c.Fingerprint.Algorithm = string(alg)
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path must be set for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn must be set for postgres (or SPECTRAL_DB_DSN)")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Fingerprint.MineralClass == "" {
		return errors.New("fingerprint.mineral_class must be set")
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	return nil
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logger.LogLevel {
	level, _ := logger.ParseLevel(c.Logging.Level)
	return level
}
