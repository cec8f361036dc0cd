//go:build !js && !wasm

package spectraldna

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/spectraldna/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Storage interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

// NewStorage opens the named driver ("sqlite" or "postgres").
func NewStorage(driver, dsn string) (Storage, error) {
	db, err := storage.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func openStorage(cfg *Config) (Storage, error) {
	switch cfg.DBDriver {
	case "", storage.DriverSQLite:
		path := cfg.DBDSN
		if path == "" {
			path = cfg.DBPath
		}
		return NewSQLiteStorage(path)
	default:
		return NewStorage(cfg.DBDriver, cfg.DBDSN)
	}
}

// translate surfaces storage.ErrNotFound as ErrNotFound, keeping only the
// lookup key from the storage message: "sample not found: id <id>".
func translate(err error) error {
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	key := strings.TrimSuffix(err.Error(), ": "+storage.ErrNotFound.Error())
	if key == err.Error() || key == "" {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

func (s *storageAdapter) RegisterSample(sample models.Sample) (models.Sample, bool, error) {
	return s.db.RegisterSample(sample)
}

func (s *storageAdapter) GetSampleByID(id string) (*models.Sample, error) {
	sample, err := s.db.GetSampleByID(id)
	return sample, translate(err)
}

func (s *storageAdapter) GetSampleByFingerprint(fp string) (*models.Sample, error) {
	sample, err := s.db.GetSampleByFingerprint(fp)
	return sample, translate(err)
}

func (s *storageAdapter) ListSamples() ([]models.Sample, error) {
	return s.db.ListSamples()
}

func (s *storageAdapter) CountSamples() (int64, error) {
	return s.db.CountSamples()
}

func (s *storageAdapter) DeleteSampleByID(id string) error {
	return translate(s.db.DeleteSampleByID(id))
}

func (s *storageAdapter) StoreAttestation(a models.Attestation) (models.Attestation, error) {
	return s.db.StoreAttestation(a)
}

func (s *storageAdapter) ListAttestations(sampleID string) ([]models.Attestation, error) {
	return s.db.ListAttestations(sampleID)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
