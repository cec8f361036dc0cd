package attest

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Scheme names a signature algorithm.
type Scheme string

const (
	Ed25519    Scheme = "ed25519"
	Dilithium3 Scheme = "dilithium3"
)

// SeedSize is the seed length for every supported scheme.
const SeedSize = 32

func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case Ed25519, Dilithium3:
		return Scheme(s), nil
	case "":
		return Ed25519, nil
	default:
		return "", fmt.Errorf("unsupported signature scheme %q", s)
	}
}

// Signer signs attestation digests.
type Signer interface {
	Scheme() Scheme
	PublicKey() []byte
	Sign(digest []byte) ([]byte, error)
}

// NewSigner derives a deterministic key pair from a 32-byte seed.
func NewSigner(scheme Scheme, seed []byte) (Signer, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	switch scheme {
	case Ed25519:
		priv := ed25519.NewKeyFromSeed(seed)
		return &ed25519Signer{priv: priv}, nil
	case Dilithium3:
		var s [mode3.SeedSize]byte
		copy(s[:], seed)
		pk, sk := mode3.NewKeyFromSeed(&s)
		return &dilithiumSigner{pk: pk, sk: sk}, nil
	default:
		return nil, fmt.Errorf("unsupported signature scheme %q", scheme)
	}
}

// GenerateSigner creates a signer from a fresh random seed and returns the
// seed so it can be persisted.
func GenerateSigner(scheme Scheme, random io.Reader) (Signer, []byte, error) {
	if random == nil {
		random = rand.Reader
	}
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(random, seed); err != nil {
		return nil, nil, fmt.Errorf("failed to read seed: %w", err)
	}
	s, err := NewSigner(scheme, seed)
	if err != nil {
		return nil, nil, err
	}
	return s, seed, nil
}

type ed25519Signer struct {
	priv ed25519.PrivateKey
}

func (s *ed25519Signer) Scheme() Scheme { return Ed25519 }

func (s *ed25519Signer) PublicKey() []byte {
	return []byte(s.priv.Public().(ed25519.PublicKey))
}

func (s *ed25519Signer) Sign(digest []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, digest), nil
}

type dilithiumSigner struct {
	pk *mode3.PublicKey
	sk *mode3.PrivateKey
}

func (s *dilithiumSigner) Scheme() Scheme    { return Dilithium3 }
func (s *dilithiumSigner) PublicKey() []byte { return s.pk.Bytes() }

func (s *dilithiumSigner) Sign(digest []byte) ([]byte, error) {
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.sk, digest, sig)
	return sig, nil
}

func verifySignature(scheme Scheme, pub, digest, sig []byte) error {
	switch scheme {
	case Ed25519:
		if len(pub) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: invalid ed25519 public key length", ErrInvalidSignature)
		}
		if len(sig) != ed25519.SignatureSize {
			return fmt.Errorf("%w: invalid ed25519 signature length", ErrInvalidSignature)
		}
		if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
			return ErrInvalidSignature
		}
		return nil
	case Dilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return fmt.Errorf("%w: invalid dilithium3 public key: %v", ErrInvalidSignature, err)
		}
		if len(sig) != mode3.SignatureSize {
			return fmt.Errorf("%w: invalid dilithium3 signature length", ErrInvalidSignature)
		}
		if !mode3.Verify(&pk, digest, sig) {
			return ErrInvalidSignature
		}
		return nil
	default:
		return fmt.Errorf("unsupported signature scheme %q", scheme)
	}
}
