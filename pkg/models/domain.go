package models

import "time"

// Sample is a registered gemstone reading.
type Sample struct {
	ID           string    // Database ID (UUID)
	Fingerprint  string    // 0x-prefixed spectral hash
	MineralClass string    // Classification label hashed into the fingerprint
	Algorithm    string    // Digest algorithm, e.g. "sha256"
	Rounding     string    // Peak rounding rule
	CID          string    // CIDv1 of the canonical payload
	Payload      string    // Canonical JSON that was hashed
	PeakCount    int       // Number of quantized peaks
	DeviceID     string    // Spectrometer that produced the first reading
	ScanID       string    // Scan id of the first reading
	MeasuredAt   time.Time // Timestamp of the first reading (zero if unknown)
	CreatedAt    time.Time
}

// Attestation is a signed claim that a fingerprint was registered.
type Attestation struct {
	ID          string
	SampleID    string
	UID         string // 0x-prefixed digest of the unsigned claim
	Schema      string
	Fingerprint string
	Mineral     string
	Attester    string
	Recipient   string
	Scheme      string // Signature scheme, e.g. "ed25519"
	PublicKey   string // base64
	Signature   string // base64
	IssuedAt    time.Time
}
