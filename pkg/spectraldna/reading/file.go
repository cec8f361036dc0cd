package reading

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// Document is the JSON form of a reading as emitted by the bench software:
//
//	{"timestamp":"2024-05-01T12:00:00.123456","scan_id":"a1b2c3d4","raw_peaks":[324.3,...],"intensities":[850,...]}
type Document struct {
	Timestamp   string    `json:"timestamp,omitempty"`
	ScanID      string    `json:"scan_id,omitempty"`
	DeviceID    string    `json:"device_id,omitempty"`
	RawPeaks    []float64 `json:"raw_peaks"`
	Intensities []float64 `json:"intensities"`
}

// naive ISO-8601 timestamps carry no zone and are taken as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Measurement converts the document. Only the timestamp is checked here.
func (d Document) Measurement() (fingerprint.RawMeasurement, error) {
	ts, err := parseTimestamp(d.Timestamp)
	if err != nil {
		return fingerprint.RawMeasurement{}, err
	}
	return fingerprint.RawMeasurement{
		Peaks:       d.RawPeaks,
		Intensities: d.Intensities,
		Timestamp:   ts,
		ScanID:      d.ScanID,
		DeviceID:    d.DeviceID,
	}, nil
}

// NewDocument is the inverse of Document.Measurement.
func NewDocument(m fingerprint.RawMeasurement) Document {
	d := Document{
		ScanID:      m.ScanID,
		DeviceID:    m.DeviceID,
		RawPeaks:    m.Peaks,
		Intensities: m.Intensities,
	}
	if !m.Timestamp.IsZero() {
		d.Timestamp = m.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return d
}

// Decode reads one JSON reading document from r.
func Decode(r io.Reader) (fingerprint.RawMeasurement, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return fingerprint.RawMeasurement{}, fmt.Errorf("failed to decode reading: %w", err)
	}
	return doc.Measurement()
}

// Encode writes m as an indented JSON reading document.
func Encode(w io.Writer, m fingerprint.RawMeasurement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(m)); err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}
	return nil
}

// FileSource reads a reading document from disk on every Read.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Read(ctx context.Context) (fingerprint.RawMeasurement, error) {
	if err := ctx.Err(); err != nil {
		return fingerprint.RawMeasurement{}, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return fingerprint.RawMeasurement{}, fmt.Errorf("failed to open reading: %w", err)
	}
	defer file.Close()

	m, err := Decode(file)
	if err != nil {
		return fingerprint.RawMeasurement{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return m, nil
}
