// Package attest issues signed registration attestations for spectral
// fingerprints. An attestation binds a fingerprint to a mineral class, an
// attester and a recipient; its UID is the digest of that unsigned claim.
package attest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gemlab/spectraldna/pkg/spectraldna/canonjson"
)

// SchemaV1 identifies the claim layout below.
const SchemaV1 = "spectraldna.registration.v1"

var (
	ErrInvalidSignature = errors.New("attestation signature is invalid")
	ErrUIDMismatch      = errors.New("attestation uid does not match claim")
)

// Claim is the unsigned content of an attestation.
type Claim struct {
	Schema      string
	Fingerprint string
	Mineral     string
	Attester    string
	Recipient   string
	IssuedAt    time.Time
}

// Attestation is a claim plus its UID and signature.
type Attestation struct {
	Claim
	UID       string
	Scheme    Scheme
	PublicKey []byte
	Signature []byte
}

// Payload is the canonical JSON of the claim. IssuedAt is rendered in UTC
// with nanosecond precision.
func (c Claim) Payload() ([]byte, error) {
	return canonjson.Marshal(canonjson.Object{
		"schema":      c.Schema,
		"fingerprint": c.Fingerprint,
		"mineral":     c.Mineral,
		"attester":    c.Attester,
		"recipient":   c.Recipient,
		"issued_at":   c.IssuedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (c Claim) digest() ([]byte, error) {
	payload, err := c.Payload()
	if err != nil {
		return nil, fmt.Errorf("failed to render claim: %w", err)
	}
	sum := sha256.Sum256(payload)
	return sum[:], nil
}

// UID returns 0x followed by the hex sha256 of the claim payload.
func (c Claim) UID() (string, error) {
	d, err := c.digest()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(d), nil
}

// AttesterAddress derives a stable 20-byte identifier from a public key.
func AttesterAddress(pub []byte) string {
	sum := sha256.Sum256(pub)
	return "0x" + hex.EncodeToString(sum[12:])
}

// Issue signs c. An empty schema defaults to SchemaV1, an empty attester to
// the signer's address and a zero IssuedAt to now. IssuedAt is truncated to
// microseconds so it survives a round trip through any supported database.
func Issue(signer Signer, c Claim) (*Attestation, error) {
	if signer == nil {
		return nil, errors.New("signer is nil")
	}
	if c.Fingerprint == "" {
		return nil, errors.New("claim fingerprint is empty")
	}
	if c.Schema == "" {
		c.Schema = SchemaV1
	}
	if c.Attester == "" {
		c.Attester = AttesterAddress(signer.PublicKey())
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = time.Now()
	}
	c.IssuedAt = c.IssuedAt.UTC().Truncate(time.Microsecond)

	d, err := c.digest()
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(d)
	if err != nil {
		return nil, fmt.Errorf("failed to sign attestation: %w", err)
	}

	return &Attestation{
		Claim:     c,
		UID:       "0x" + hex.EncodeToString(d),
		Scheme:    signer.Scheme(),
		PublicKey: signer.PublicKey(),
		Signature: sig,
	}, nil
}

// Verify recomputes the UID from the claim and checks the signature.
func Verify(a *Attestation) error {
	if a == nil {
		return errors.New("attestation is nil")
	}
	d, err := a.Claim.digest()
	if err != nil {
		return err
	}
	if !strings.EqualFold(a.UID, "0x"+hex.EncodeToString(d)) {
		return ErrUIDMismatch
	}
	return verifySignature(a.Scheme, a.PublicKey, d, a.Signature)
}
