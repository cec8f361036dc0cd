//go:build !js && !wasm

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gemlab/spectraldna/pkg/models"
)

const testFingerprint = "0xbc44737ce9a071b20fc3c201a295d824757903507569e71c953c0bbd823d4fc9"

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_spectral.sqlite3")
	t.Setenv("SPECTRAL_DB_PATH", dbPath)

	client, err := NewDBClient()
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func testSample() models.Sample {
	return models.Sample{
		Fingerprint:  testFingerprint,
		MineralClass: "BERYL_EMERALD",
		Algorithm:    "sha256",
		Rounding:     "half-even",
		CID:          "bafkreif4irzxz2naogza7q6cagrjlwbeov4qgudvnhtrzfj4bo6yepkpze",
		Payload:      `{"intensities_norm":[850,920,1200,450],"mineral":"BERYL_EMERALD","peaks_cm1":[324,396,685,1067]}`,
		PeakCount:    4,
		ScanID:       "a1b2c3d4",
		MeasuredAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewDBClient(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil {
		t.Fatal("Expected non-nil GORM DB handle")
	}
	if client.db == nil {
		t.Fatal("Expected non-nil sql.DB handle")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestOpenDrivers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "custom.db")
	client, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	client.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected database at %s: %v", path, err)
	}
	if _, err := Open(DriverPostgres, ""); err == nil {
		t.Error("Expected error for postgres without dsn")
	}
	if _, err := Open("mysql", "x"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestRegisterSampleIsIdempotent(t *testing.T) {
	client, _ := setupTestDB(t)

	first, existing, err := client.RegisterSample(testSample())
	if err != nil {
		t.Fatalf("RegisterSample failed: %v", err)
	}
	if existing {
		t.Error("Expected first registration to be new")
	}
	if first.ID == "" {
		t.Fatal("Expected generated sample ID")
	}

	again := testSample()
	again.DeviceID = "GEMLAB-RAMAN-01"
	again.ScanID = "ffffffff"
	second, existing, err := client.RegisterSample(again)
	if err != nil {
		t.Fatalf("RegisterSample failed: %v", err)
	}
	if !existing {
		t.Error("Expected second registration to report existing")
	}
	if second.ID != first.ID {
		t.Errorf("Expected ID %s, got %s", first.ID, second.ID)
	}
	if second.DeviceID != "GEMLAB-RAMAN-01" {
		t.Errorf("Expected missing device id to be filled, got %q", second.DeviceID)
	}
	if second.ScanID != "a1b2c3d4" {
		t.Errorf("Expected original scan id to be kept, got %q", second.ScanID)
	}

	n, err := client.CountSamples()
	if err != nil {
		t.Fatalf("CountSamples failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 sample, got %d", n)
	}
}

func TestGetSample(t *testing.T) {
	client, _ := setupTestDB(t)

	stored, _, err := client.RegisterSample(testSample())
	if err != nil {
		t.Fatalf("RegisterSample failed: %v", err)
	}

	byID, err := client.GetSampleByID(stored.ID)
	if err != nil {
		t.Fatalf("GetSampleByID failed: %v", err)
	}
	if byID.Fingerprint != testFingerprint || byID.PeakCount != 4 || byID.CID != stored.CID {
		t.Errorf("Unexpected sample %+v", byID)
	}
	if !byID.MeasuredAt.Equal(testSample().MeasuredAt) {
		t.Errorf("Expected measured-at %v, got %v", testSample().MeasuredAt, byID.MeasuredAt)
	}

	byFP, err := client.GetSampleByFingerprint(testFingerprint)
	if err != nil {
		t.Fatalf("GetSampleByFingerprint failed: %v", err)
	}
	if byFP.ID != stored.ID {
		t.Errorf("Expected ID %s, got %s", stored.ID, byFP.ID)
	}

	if _, err := client.GetSampleByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListSamples(t *testing.T) {
	client, _ := setupTestDB(t)

	samples, err := client.ListSamples()
	if err != nil {
		t.Fatalf("ListSamples failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("Expected empty list, got %d", len(samples))
	}

	for _, fp := range []string{testFingerprint, "0x" + "11" + testFingerprint[4:]} {
		s := testSample()
		s.Fingerprint = fp
		if _, _, err := client.RegisterSample(s); err != nil {
			t.Fatalf("RegisterSample failed: %v", err)
		}
	}

	samples, err = client.ListSamples()
	if err != nil {
		t.Fatalf("ListSamples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Errorf("Expected 2 samples, got %d", len(samples))
	}
}

func TestDeleteSampleRemovesAttestations(t *testing.T) {
	client, _ := setupTestDB(t)

	stored, _, err := client.RegisterSample(testSample())
	if err != nil {
		t.Fatalf("RegisterSample failed: %v", err)
	}

	att, err := client.StoreAttestation(models.Attestation{
		SampleID:    stored.ID,
		UID:         "0x01",
		Schema:      "spectraldna.registration.v1",
		Fingerprint: testFingerprint,
		Scheme:      "ed25519",
		IssuedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("StoreAttestation failed: %v", err)
	}
	if att.ID == "" {
		t.Error("Expected generated attestation ID")
	}

	list, err := client.ListAttestations(stored.ID)
	if err != nil {
		t.Fatalf("ListAttestations failed: %v", err)
	}
	if len(list) != 1 || list[0].UID != "0x01" {
		t.Fatalf("Expected one attestation, got %+v", list)
	}

	if err := client.DeleteSampleByID(stored.ID); err != nil {
		t.Fatalf("DeleteSampleByID failed: %v", err)
	}
	if _, err := client.GetSampleByID(stored.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected sample to be gone, got %v", err)
	}
	list, err = client.ListAttestations(stored.ID)
	if err != nil {
		t.Fatalf("ListAttestations failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected attestations to be deleted, got %d", len(list))
	}

	if err := client.DeleteSampleByID(stored.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	if err := c.Close(); err != nil {
		t.Errorf("Expected nil Close on nil client, got %v", err)
	}
	if _, _, err := c.RegisterSample(testSample()); err == nil {
		t.Error("Expected error from nil client")
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"spectral.db", "spectral.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"file:x.db?mode=ro", "file:x.db?mode=ro&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
	}
	for _, tt := range tests {
		if got := sqliteDSN(tt.path); got != tt.want {
			t.Errorf("sqliteDSN(%q): Expected %q, got %q", tt.path, tt.want, got)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	client, _ := setupTestDB(t)

	row := sampleFromModel(testSample())
	row.ID = "11111111-1111-1111-1111-111111111111"
	if err := client.DB.Create(&row).Error; err != nil {
		t.Fatalf("Failed to insert sample: %v", err)
	}
	dup := sampleFromModel(testSample())
	dup.ID = "22222222-2222-2222-2222-222222222222"
	err := client.DB.Create(&dup).Error
	if err == nil {
		t.Fatal("Expected duplicate fingerprint to be rejected")
	}
	if !isUniqueViolation(err) {
		t.Errorf("Expected %v to be a unique violation", err)
	}

	for _, msg := range []string{
		"NOT NULL constraint failed: samples.fingerprint",
		"FOREIGN KEY constraint failed",
		"CHECK constraint failed: peak_count",
	} {
		if isUniqueViolation(errors.New(msg)) {
			t.Errorf("Expected %q not to be a unique violation", msg)
		}
	}
	if !isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_samples_fingerprint"`)) {
		t.Error("Expected postgres duplicate key error to be a unique violation")
	}
}

func TestNotFoundMessage(t *testing.T) {
	client, _ := setupTestDB(t)

	_, err := client.GetSampleByID("missing")
	if err == nil || err.Error() != "id missing: not found" {
		t.Errorf("Expected %q, got %v", "id missing: not found", err)
	}
	err = client.DeleteSampleByID("missing")
	if err == nil || err.Error() != "id missing: not found" {
		t.Errorf("Expected %q, got %v", "id missing: not found", err)
	}
}
