package main

import (
	"time"

	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// FingerprintResponse is the pipeline output for one reading.
type FingerprintResponse struct {
	Fingerprint string  `json:"fingerprint"`
	CID         string  `json:"cid"`
	Payload     string  `json:"payload"`
	PeaksCm1    []int64 `json:"peaks_cm1"`
}

func newFingerprintResponse(res *fingerprint.Result) FingerprintResponse {
	return FingerprintResponse{
		Fingerprint: res.Fingerprint.String(),
		CID:         res.CID,
		Payload:     string(res.Payload),
		PeaksCm1:    res.Record.PeaksQuantized,
	}
}

// SampleDTO represents a registered sample in API responses
type SampleDTO struct {
	ID           string           `json:"id"`
	Fingerprint  string           `json:"fingerprint"`
	MineralClass string           `json:"mineral_class"`
	Algorithm    string           `json:"algorithm"`
	Rounding     string           `json:"rounding"`
	CID          string           `json:"cid"`
	Payload      string           `json:"payload"`
	PeakCount    int              `json:"peak_count"`
	DeviceID     string           `json:"device_id,omitempty"`
	ScanID       string           `json:"scan_id,omitempty"`
	MeasuredAt   *time.Time       `json:"measured_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	Attestations []AttestationDTO `json:"attestations,omitempty"`
}

// AttestationDTO carries everything needed to re-verify an attestation
// offline.
type AttestationDTO struct {
	UID         string    `json:"uid"`
	Schema      string    `json:"schema"`
	Fingerprint string    `json:"fingerprint"`
	Mineral     string    `json:"mineral"`
	Attester    string    `json:"attester"`
	Recipient   string    `json:"recipient,omitempty"`
	Scheme      string    `json:"scheme"`
	PublicKey   string    `json:"public_key"`
	Signature   string    `json:"signature"`
	IssuedAt    time.Time `json:"issued_at"`
}

func newSampleDTO(s models.Sample, atts []models.Attestation) SampleDTO {
	dto := SampleDTO{
		ID:           s.ID,
		Fingerprint:  s.Fingerprint,
		MineralClass: s.MineralClass,
		Algorithm:    s.Algorithm,
		Rounding:     s.Rounding,
		CID:          s.CID,
		Payload:      s.Payload,
		PeakCount:    s.PeakCount,
		DeviceID:     s.DeviceID,
		ScanID:       s.ScanID,
		CreatedAt:    s.CreatedAt,
	}
	if !s.MeasuredAt.IsZero() {
		t := s.MeasuredAt
		dto.MeasuredAt = &t
	}
	for _, a := range atts {
		dto.Attestations = append(dto.Attestations, newAttestationDTO(a))
	}
	return dto
}

func newAttestationDTO(a models.Attestation) AttestationDTO {
	return AttestationDTO{
		UID:         a.UID,
		Schema:      a.Schema,
		Fingerprint: a.Fingerprint,
		Mineral:     a.Mineral,
		Attester:    a.Attester,
		Recipient:   a.Recipient,
		Scheme:      a.Scheme,
		PublicKey:   a.PublicKey,
		Signature:   a.Signature,
		IssuedAt:    a.IssuedAt,
	}
}

// RegisterResponse is the response for POST /api/samples
type RegisterResponse struct {
	Existing    bool                `json:"existing"`
	Sample      SampleDTO           `json:"sample"`
	Attestation *AttestationDTO     `json:"attestation,omitempty"`
	Result      FingerprintResponse `json:"result"`
}

// VerifyResponse is the response for POST /api/verify
type VerifyResponse struct {
	Matched  bool                `json:"matched"`
	Attested bool                `json:"attested"`
	Sample   *SampleDTO          `json:"sample,omitempty"`
	Result   FingerprintResponse `json:"result"`
}

// ListSamplesResponse is the response for GET /api/samples
type ListSamplesResponse struct {
	Samples []SampleDTO `json:"samples"`
	Count   int         `json:"count"`
}

// DeleteSampleResponse is the response for DELETE /api/samples/:id
type DeleteSampleResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and registry metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	Database     string `json:"database"`
	SampleCount  int64  `json:"sample_count"`
	MineralClass string `json:"mineral_class"`
	Algorithm    string `json:"algorithm"`
	Rounding     string `json:"rounding"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
