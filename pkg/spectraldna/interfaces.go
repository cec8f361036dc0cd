package spectraldna

import (
	"context"
	"errors"

	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// ErrNotFound is returned when no sample matches an id or fingerprint.
var ErrNotFound = errors.New("sample not found")

type Service interface {
	Fingerprint(ctx context.Context, raw fingerprint.RawMeasurement) (*fingerprint.Result, error)
	Register(ctx context.Context, raw fingerprint.RawMeasurement) (*Registration, error)
	Verify(ctx context.Context, raw fingerprint.RawMeasurement) (*Verification, error)
	GetSample(id string) (*models.Sample, error)
	GetSampleByFingerprint(fp string) (*models.Sample, error)
	ListSamples() ([]models.Sample, error)
	DeleteSample(id string) error
	Attestations(sampleID string) ([]models.Attestation, error)
	Stats() (Stats, error)
	HasherConfig() fingerprint.Config
	Close() error
}

type Storage interface {
	RegisterSample(s models.Sample) (models.Sample, bool, error)
	GetSampleByID(id string) (*models.Sample, error)
	GetSampleByFingerprint(fp string) (*models.Sample, error)
	ListSamples() ([]models.Sample, error)
	CountSamples() (int64, error)
	DeleteSampleByID(id string) error
	StoreAttestation(a models.Attestation) (models.Attestation, error)
	ListAttestations(sampleID string) ([]models.Attestation, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
