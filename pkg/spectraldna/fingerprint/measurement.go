package fingerprint

import (
	"fmt"
	"math"
	"time"
)

// MaxAbsPeak bounds raw peak values so that every quantized peak is an
// integer exactly representable as a float64 (2^53).
const MaxAbsPeak = 1 << 53

// RawMeasurement is a single reading as produced by a reading source.
// Only Peaks and Intensities contribute to the fingerprint; the remaining
// fields are provenance metadata.
type RawMeasurement struct {
	Peaks       []float64 // Raman shift positions (cm^-1)
	Intensities []float64 // intensity of Peaks[i] is Intensities[i]
	Timestamp   time.Time
	ScanID      string
	DeviceID    string
}

// Validate checks the shape and finiteness preconditions of the pipeline.
func (m RawMeasurement) Validate() error {
	if len(m.Peaks) == 0 {
		return invalidInput("peaks", "at least one peak is required")
	}
	if len(m.Intensities) == 0 {
		return invalidInput("intensities", "at least one intensity is required")
	}
	if len(m.Peaks) != len(m.Intensities) {
		return invalidInput("intensities", fmt.Sprintf("length %d does not match %d peaks", len(m.Intensities), len(m.Peaks)))
	}
	for i, p := range m.Peaks {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return invalidInput(fmt.Sprintf("peaks[%d]", i), "value must be finite")
		}
		if math.Abs(p) > MaxAbsPeak {
			return invalidInput(fmt.Sprintf("peaks[%d]", i), "value out of range")
		}
	}
	for i, v := range m.Intensities {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidInput(fmt.Sprintf("intensities[%d]", i), "value must be finite")
		}
	}
	return nil
}
