package spectraldna

import (
	"time"

	"github.com/gemlab/spectraldna/pkg/spectraldna/attest"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

type Config struct {
	DBDriver     string
	DBPath       string
	DBDSN        string
	MineralClass string
	Rounding     fingerprint.RoundingRule
	Algorithm    fingerprint.HashAlgorithm
	Signer       attest.Signer
	Attester     string
	Recipient    string
	Clock        func() time.Time
	Logger       Logger
	Storage      Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithDatabase selects a storage driver ("sqlite" or "postgres") and its
// connection string.
func WithDatabase(driver, dsn string) Option {
	return func(c *Config) {
		c.DBDriver = driver
		c.DBDSN = dsn
	}
}

func WithMineralClass(class string) Option {
	return func(c *Config) {
		c.MineralClass = class
	}
}

func WithRounding(rule fingerprint.RoundingRule) Option {
	return func(c *Config) {
		c.Rounding = rule
	}
}

func WithAlgorithm(alg fingerprint.HashAlgorithm) Option {
	return func(c *Config) {
		c.Algorithm = alg
	}
}

// WithSigner enables attestations on registration. An empty attester is
// derived from the signer's public key.
func WithSigner(signer attest.Signer, attester string) Option {
	return func(c *Config) {
		c.Signer = signer
		c.Attester = attester
	}
}

func WithRecipient(recipient string) Option {
	return func(c *Config) {
		c.Recipient = recipient
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Config) {
		c.Clock = clock
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBDriver:     "sqlite",
		DBPath:       "spectraldna.sqlite3",
		MineralClass: fingerprint.DefaultMineralClass,
		Rounding:     fingerprint.DefaultRounding,
		Algorithm:    fingerprint.DefaultAlgorithm,
		Clock:        time.Now,
		Logger:       nil,
	}
}
