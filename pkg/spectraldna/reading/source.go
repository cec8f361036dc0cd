// Package reading provides sources of raw Raman measurements: a simulator of
// the bench spectrometer and decoders for recorded reading documents.
package reading

import (
	"context"

	"github.com/gemlab/spectraldna/pkg/spectraldna/fingerprint"
)

// Source yields raw measurements. Implementations do not validate shape;
// that is left to the fingerprint pipeline.
type Source interface {
	Read(ctx context.Context) (fingerprint.RawMeasurement, error)
}

// DefaultDeviceID identifies the reference bench instrument.
const DefaultDeviceID = "GEMLAB-RAMAN-01"

// Characteristic beryl (emerald) bands in cm^-1: Si-O vibrations at 324 and
// 396, Be-O vibrations at 685 and 1067.
var (
	ReferencePeaks       = []float64{324, 396, 685, 1067}
	ReferenceIntensities = []float64{850, 920, 1200, 450}
)
