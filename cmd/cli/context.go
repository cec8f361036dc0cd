package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gemlab/spectraldna/internal/config"
	"github.com/gemlab/spectraldna/pkg/logger"
	"github.com/gemlab/spectraldna/pkg/spectraldna"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
	"github.com/gemlab/spectraldna/pkg/spectraldna/reading"
)

type globalFlags struct {
	config    string
	db        string
	mineral   string
	rounding  string
	algorithm string
	json      bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once and applies flag overrides.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags.db != "" {
			cfg.Database.Driver = "sqlite"
			cfg.Database.Path = c.flags.db
		}
		if c.flags.mineral != "" {
			cfg.Fingerprint.MineralClass = c.flags.mineral
		}
		if c.flags.rounding != "" {
			rule, err := fingerprint.ParseRoundingRule(c.flags.rounding)
			if err != nil {
				c.configErr = err
				return
			}
			cfg.Fingerprint.Rounding = string(rule)
		}
		if c.flags.algorithm != "" {
			alg, err := fingerprint.ParseHashAlgorithm(c.flags.algorithm)
			if err != nil {
				c.configErr = err
				return
			}
			cfg.Fingerprint.Algorithm = string(alg)
		}
		logger.SetLevel(cfg.LogLevel())
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) hasher() (*fingerprint.Hasher, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return fingerprint.New(
		fingerprint.WithMineralClass(cfg.Fingerprint.MineralClass),
		fingerprint.WithRounding(fingerprint.RoundingRule(cfg.Fingerprint.Rounding)),
		fingerprint.WithAlgorithm(fingerprint.HashAlgorithm(cfg.Fingerprint.Algorithm)),
	)
}

// withService opens the registry for the duration of fn.
func (c *commandContext) withService(fn func(spectraldna.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	opts, err := cfg.ServiceOptions()
	if err != nil {
		return err
	}
	svc, err := spectraldna.NewService(opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize service: %w", err)
	}
	defer svc.Close()
	return fn(svc)
}

// readMeasurement decodes a reading document from path, or stdin for "-".
func readMeasurement(path string, stdin io.Reader) (fingerprint.RawMeasurement, error) {
	if path == "-" {
		return reading.Decode(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return fingerprint.RawMeasurement{}, fmt.Errorf("failed to open reading: %w", err)
	}
	defer f.Close()
	m, err := reading.Decode(f)
	if err != nil {
		return fingerprint.RawMeasurement{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
