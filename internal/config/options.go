//go:build !js && !wasm

package config

import (
	"fmt"

	"github.com/gemlab/spectraldna/pkg/spectraldna"
	"github.com/gemlab/spectraldna/pkg/spectraldna/attest"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// ServiceOptions translates the configuration into registry options,
// loading the attestation key when one is configured.
func (c *Config) ServiceOptions() ([]spectraldna.Option, error) {
	dsn := c.Database.DSN
	if c.Database.Driver == "sqlite" {
		dsn = c.Database.Path
	}
	opts := []spectraldna.Option{
		spectraldna.WithDatabase(c.Database.Driver, dsn),
		spectraldna.WithMineralClass(c.Fingerprint.MineralClass),
		spectraldna.WithRounding(fingerprint.RoundingRule(c.Fingerprint.Rounding)),
		spectraldna.WithAlgorithm(fingerprint.HashAlgorithm(c.Fingerprint.Algorithm)),
		spectraldna.WithRecipient(c.Attestation.Recipient),
	}

	if c.Attestation.KeyFile != "" {
		kf, err := attest.LoadKeyFile(c.Attestation.KeyFile)
		if err != nil {
			return nil, err
		}
		signer, err := kf.Signer()
		if err != nil {
			return nil, fmt.Errorf("attestation.key_file: %w", err)
		}
		opts = append(opts, spectraldna.WithSigner(signer, kf.Attester))
	}
	return opts, nil
}
