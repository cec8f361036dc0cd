package spectraldna

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gemlab/spectraldna/pkg/logger"
	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna/attest"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// spectralService is the default implementation of the Service interface.
type spectralService struct {
	storage Storage
	hasher  *fingerprint.Hasher
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock must not be nil")
	}

	hasher, err := fingerprint.New(
		fingerprint.WithMineralClass(cfg.MineralClass),
		fingerprint.WithRounding(cfg.Rounding),
		fingerprint.WithAlgorithm(cfg.Algorithm),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid fingerprint configuration: %w", err)
	}

	var stor Storage
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = openStorage(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &spectralService{
		storage: stor,
		hasher:  hasher,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// Fingerprint runs the pipeline without touching storage.
func (s *spectralService) Fingerprint(ctx context.Context, raw fingerprint.RawMeasurement) (*fingerprint.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := s.hasher.Fingerprint(raw)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Register fingerprints raw and stores it. Registering a fingerprint that is
// already known returns the stored sample with Existing set.
func (s *spectralService) Register(ctx context.Context, raw fingerprint.RawMeasurement) (*Registration, error) {
	res, err := s.Fingerprint(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("Canonical payload: %s", res.Payload)

	cfg := s.hasher.Config()
	sample, existing, err := s.storage.RegisterSample(models.Sample{
		Fingerprint:  res.Fingerprint.String(),
		MineralClass: cfg.MineralClass,
		Algorithm:    cfg.Algorithm.String(),
		Rounding:     cfg.Rounding.String(),
		CID:          res.CID,
		Payload:      string(res.Payload),
		PeakCount:    len(res.Record.PeaksQuantized),
		DeviceID:     raw.DeviceID,
		ScanID:       raw.ScanID,
		MeasuredAt:   raw.Timestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register sample: %w", err)
	}

	reg := &Registration{Sample: sample, Existing: existing, Result: res}
	if existing {
		s.log.Infof("Fingerprint %s already registered as sample %s", res.Fingerprint, sample.ID)
		return reg, nil
	}

	if s.config.Signer != nil {
		att, err := s.issueAttestation(sample)
		if err != nil {
			if delErr := s.storage.DeleteSampleByID(sample.ID); delErr != nil { // Rollback
				s.log.Errorf("Failed to roll back sample %s: %v", sample.ID, delErr)
			}
			return nil, err
		}
		reg.Attestation = att
	}

	s.log.Infof("Registered sample %s with fingerprint %s", sample.ID, res.Fingerprint)
	return reg, nil
}

func (s *spectralService) issueAttestation(sample models.Sample) (*models.Attestation, error) {
	a, err := attest.Issue(s.config.Signer, attest.Claim{
		Fingerprint: sample.Fingerprint,
		Mineral:     sample.MineralClass,
		Attester:    s.config.Attester,
		Recipient:   s.config.Recipient,
		IssuedAt:    s.config.Clock(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue attestation: %w", err)
	}

	stored, err := s.storage.StoreAttestation(models.Attestation{
		SampleID:    sample.ID,
		UID:         a.UID,
		Schema:      a.Schema,
		Fingerprint: a.Fingerprint,
		Mineral:     a.Mineral,
		Attester:    a.Attester,
		Recipient:   a.Recipient,
		Scheme:      string(a.Scheme),
		PublicKey:   base64.StdEncoding.EncodeToString(a.PublicKey),
		Signature:   base64.StdEncoding.EncodeToString(a.Signature),
		IssuedAt:    a.IssuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store attestation: %w", err)
	}
	s.log.Infof("Issued %s attestation %s", a.Scheme, a.UID)
	return &stored, nil
}

// Verify fingerprints raw and looks the result up in the registry.
func (s *spectralService) Verify(ctx context.Context, raw fingerprint.RawMeasurement) (*Verification, error) {
	res, err := s.Fingerprint(ctx, raw)
	if err != nil {
		return nil, err
	}

	v := &Verification{Result: res}
	sample, err := s.storage.GetSampleByFingerprint(res.Fingerprint.String())
	if errors.Is(err, ErrNotFound) {
		s.log.Infof("No sample registered for %s", res.Fingerprint)
		return v, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up fingerprint: %w", err)
	}
	v.Matched = true
	v.Sample = sample

	atts, err := s.storage.ListAttestations(sample.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attestations: %w", err)
	}
	for _, a := range atts {
		if err := VerifyAttestation(a); err != nil {
			s.log.Warnf("Attestation %s for sample %s does not verify: %v", a.UID, sample.ID, err)
			continue
		}
		v.Attested = true
	}

	s.log.Infof("Reading matches sample %s", sample.ID)
	return v, nil
}

// VerifyAttestation checks a stored attestation's UID and signature.
func VerifyAttestation(m models.Attestation) error {
	pub, err := base64.StdEncoding.DecodeString(m.PublicKey)
	if err != nil {
		return fmt.Errorf("invalid public key encoding: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(m.Signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	return attest.Verify(&attest.Attestation{
		Claim: attest.Claim{
			Schema:      m.Schema,
			Fingerprint: m.Fingerprint,
			Mineral:     m.Mineral,
			Attester:    m.Attester,
			Recipient:   m.Recipient,
			IssuedAt:    m.IssuedAt,
		},
		UID:       m.UID,
		Scheme:    attest.Scheme(m.Scheme),
		PublicKey: pub,
		Signature: sig,
	})
}

func (s *spectralService) GetSample(id string) (*models.Sample, error) {
	return s.storage.GetSampleByID(id)
}

// GetSampleByFingerprint rejects malformed fingerprints as InvalidInput.
func (s *spectralService) GetSampleByFingerprint(fp string) (*models.Sample, error) {
	parsed, err := s.hasher.ParseFingerprint(fp)
	if err != nil {
		return nil, err
	}
	return s.storage.GetSampleByFingerprint(parsed.String())
}

func (s *spectralService) ListSamples() ([]models.Sample, error) {
	return s.storage.ListSamples()
}

// DeleteSample removes a sample and its attestations.
func (s *spectralService) DeleteSample(id string) error {
	if err := s.storage.DeleteSampleByID(id); err != nil {
		return err
	}
	s.log.Infof("Deleted sample %s", id)
	return nil
}

func (s *spectralService) Attestations(sampleID string) ([]models.Attestation, error) {
	if _, err := s.storage.GetSampleByID(sampleID); err != nil {
		return nil, err
	}
	return s.storage.ListAttestations(sampleID)
}

func (s *spectralService) Stats() (Stats, error) {
	n, err := s.storage.CountSamples()
	if err != nil {
		return Stats{}, err
	}
	cfg := s.hasher.Config()
	return Stats{
		Samples:      n,
		MineralClass: cfg.MineralClass,
		Algorithm:    cfg.Algorithm.String(),
		Rounding:     cfg.Rounding.String(),
	}, nil
}

func (s *spectralService) HasherConfig() fingerprint.Config {
	return s.hasher.Config()
}

// Close releases all resources held by the service.
func (s *spectralService) Close() error {
	return s.storage.Close()
}
