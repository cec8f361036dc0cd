package attest

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// KeyFile is the on-disk form of a signing key:
//
//	scheme = "ed25519"
//	seed = "<base64, 32 bytes>"
//	attester = "GEMLAB"
type KeyFile struct {
	Scheme   string `toml:"scheme"`
	Seed     string `toml:"seed"`
	Attester string `toml:"attester,omitempty"`
}

// NewKeyFile encodes a seed for persistence.
func NewKeyFile(scheme Scheme, seed []byte, attester string) KeyFile {
	return KeyFile{
		Scheme:   string(scheme),
		Seed:     base64.StdEncoding.EncodeToString(seed),
		Attester: attester,
	}
}

func (k KeyFile) Marshal() ([]byte, error) {
	return toml.Marshal(k)
}

// Signer rebuilds the key pair described by the file.
func (k KeyFile) Signer() (Signer, error) {
	scheme, err := ParseScheme(k.Scheme)
	if err != nil {
		return nil, err
	}
	seed, err := base64.StdEncoding.DecodeString(k.Seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed base64: %w", err)
	}
	return NewSigner(scheme, seed)
}

// LoadKeyFile reads and parses a TOML key file.
func LoadKeyFile(path string) (KeyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return KeyFile{}, fmt.Errorf("failed to read key file: %w", err)
	}
	var k KeyFile
	if err := toml.Unmarshal(data, &k); err != nil {
		return KeyFile{}, fmt.Errorf("failed to parse key file %s: %w", path, err)
	}
	if k.Seed == "" {
		return KeyFile{}, fmt.Errorf("key file %s has no seed", path)
	}
	return k, nil
}
