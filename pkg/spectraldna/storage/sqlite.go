//go:build !js && !wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gemlab/spectraldna/pkg/models"
	"github.com/gemlab/spectraldna/pkg/utils"
)

const DefaultDBFile = "spectraldna.sqlite3"
const errDBClientNil = "db client is nil"

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a sample or attestation does not exist.
var ErrNotFound = errors.New("not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type Sample struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Fingerprint  string `gorm:"type:varchar(80);uniqueIndex:idx_sample_fingerprint" json:"fingerprint"`
	MineralClass string `gorm:"index:idx_sample_mineral" json:"mineral_class"`
	Algorithm    string `json:"algorithm"`
	Rounding     string `json:"rounding"`
	CID          string `gorm:"column:cid" json:"cid"`
	Payload      string `json:"payload"`
	PeakCount    int    `json:"peak_count"`
	DeviceID     string `gorm:"index:idx_sample_device" json:"device_id"`
	ScanID       string `json:"scan_id"`
	MeasuredAt   *time.Time
	CreatedAt    time.Time
}

type Attestation struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	SampleID    string `gorm:"type:varchar(36);index:idx_attestation_sample" json:"sample_id"`
	UID         string `gorm:"column:uid;type:varchar(80);uniqueIndex:idx_attestation_uid" json:"uid"`
	Schema      string `json:"schema"`
	Fingerprint string `gorm:"type:varchar(80);index:idx_attestation_fingerprint" json:"fingerprint"`
	Mineral     string `json:"mineral"`
	Attester    string `json:"attester"`
	Recipient   string `json:"recipient"`
	Scheme      string `json:"scheme"`
	PublicKey   string `json:"public_key"`
	Signature   string `json:"signature"`
	IssuedAt    time.Time
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("SPECTRAL_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !os.IsExist(err) {
		if filepath.Dir(dbPath) != "." {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}
	return open(sqlite.Open(sqliteDSN(dbPath)))
}

// sqliteDSN appends the connection pragmas, keeping any query the path
// already carries.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open connects with the named driver. For sqlite the dsn is a file path
// (empty selects SPECTRAL_DB_PATH or DefaultDBFile); for postgres it is a
// libpq connection string or URL.
func Open(driver, dsn string) (*DBClient, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		if dsn == "" {
			return NewDBClient()
		}
		return NewDBClientWithPath(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres driver requires a dsn")
		}
		return open(postgres.Open(dsn))
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func open(dialector gorm.Dialector) (*DBClient, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", dialector.Name(), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Sample{}, &Attestation{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RegisterSample stores s keyed by its fingerprint. If the fingerprint is
// already registered the existing sample is returned with existing=true; a
// missing device id on the stored row is filled from s.
func (c *DBClient) RegisterSample(s models.Sample) (stored models.Sample, existing bool, err error) {
	if c == nil || c.DB == nil {
		return models.Sample{}, false, errors.New(errDBClientNil)
	}

	var row Sample
	err = c.DB.Where("fingerprint = ?", s.Fingerprint).First(&row).Error
	if err == nil {
		if row.DeviceID == "" && s.DeviceID != "" {
			if err := c.DB.Model(&row).Update("DeviceID", s.DeviceID).Error; err != nil {
				return models.Sample{}, false, fmt.Errorf("updating device_id: %w", err)
			}
			row.DeviceID = s.DeviceID
		}
		return row.toModel(), true, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Sample{}, false, fmt.Errorf("querying existing sample: %w", err)
	}

	row = sampleFromModel(s)
	if row.ID == "" {
		row.ID = utils.GenerateUUID()
	}
	err = c.DB.Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			if fetchErr := c.DB.Where("fingerprint = ?", s.Fingerprint).First(&row).Error; fetchErr != nil {
				return models.Sample{}, false, fmt.Errorf("fetching sample after constraint violation: %w", fetchErr)
			}
			return row.toModel(), true, nil
		}
		return models.Sample{}, false, fmt.Errorf("creating sample: %w", err)
	}

	return row.toModel(), false, nil
}

// isUniqueViolation matches a lost race on the fingerprint index. NOT NULL
// and foreign key failures are not duplicates and must not match.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func (c *DBClient) GetSampleByID(id string) (*models.Sample, error) {
	return c.findSample("id", id)
}

func (c *DBClient) GetSampleByFingerprint(fp string) (*models.Sample, error) {
	return c.findSample("fingerprint", fp)
}

func (c *DBClient) findSample(column string, arg any) (*models.Sample, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var row Sample
	if err := c.DB.Where(column+" = ?", arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %v: %w", column, arg, ErrNotFound)
		}
		return nil, fmt.Errorf("querying sample: %w", err)
	}
	s := row.toModel()
	return &s, nil
}

// ListSamples returns samples newest first.
func (c *DBClient) ListSamples() ([]models.Sample, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Sample
	if err := c.DB.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing samples: %w", err)
	}
	out := make([]models.Sample, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (c *DBClient) CountSamples() (int64, error) {
	if c == nil || c.DB == nil {
		return 0, errors.New(errDBClientNil)
	}
	var n int64
	if err := c.DB.Model(&Sample{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting samples: %w", err)
	}
	return n, nil
}

// DeleteSampleByID removes the sample and its attestations in one
// transaction.
func (c *DBClient) DeleteSampleByID(id string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sample_id = ?", id).Delete(&Attestation{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Sample{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("id %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (c *DBClient) StoreAttestation(a models.Attestation) (models.Attestation, error) {
	if c == nil || c.DB == nil {
		return models.Attestation{}, errors.New(errDBClientNil)
	}
	row := attestationFromModel(a)
	if row.ID == "" {
		row.ID = utils.GenerateUUID()
	}
	if err := c.DB.Create(&row).Error; err != nil {
		return models.Attestation{}, fmt.Errorf("creating attestation: %w", err)
	}
	return row.toModel(), nil
}

func (c *DBClient) ListAttestations(sampleID string) ([]models.Attestation, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []Attestation
	if err := c.DB.Where("sample_id = ?", sampleID).Order("issued_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying attestations: %w", err)
	}
	out := make([]models.Attestation, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func sampleFromModel(s models.Sample) Sample {
	row := Sample{
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
		t := s.MeasuredAt.UTC()
		row.MeasuredAt = &t
	}
	return row
}

func (r Sample) toModel() models.Sample {
	s := models.Sample{
		ID:           r.ID,
		Fingerprint:  r.Fingerprint,
		MineralClass: r.MineralClass,
		Algorithm:    r.Algorithm,
		Rounding:     r.Rounding,
		CID:          r.CID,
		Payload:      r.Payload,
		PeakCount:    r.PeakCount,
		DeviceID:     r.DeviceID,
		ScanID:       r.ScanID,
		CreatedAt:    r.CreatedAt,
	}
	if r.MeasuredAt != nil {
		s.MeasuredAt = r.MeasuredAt.UTC()
	}
	return s
}

func attestationFromModel(a models.Attestation) Attestation {
	return Attestation{
		ID:          a.ID,
		SampleID:    a.SampleID,
		UID:         a.UID,
		Schema:      a.Schema,
		Fingerprint: a.Fingerprint,
		Mineral:     a.Mineral,
		Attester:    a.Attester,
		Recipient:   a.Recipient,
		Scheme:      a.Scheme,
		PublicKey:   a.PublicKey,
		Signature:   a.Signature,
		IssuedAt:    a.IssuedAt.UTC(),
	}
}

func (r Attestation) toModel() models.Attestation {
	return models.Attestation{
		ID:          r.ID,
		SampleID:    r.SampleID,
		UID:         r.UID,
		Schema:      r.Schema,
		Fingerprint: r.Fingerprint,
		Mineral:     r.Mineral,
		Attester:    r.Attester,
		Recipient:   r.Recipient,
		Scheme:      r.Scheme,
		PublicKey:   r.PublicKey,
		Signature:   r.Signature,
		IssuedAt:    r.IssuedAt.UTC(),
	}
}
